package extract

import (
	"encoding/json"
	"testing"

	"declschema/internal/core/errors"
	"declschema/internal/engine/parser"
	"declschema/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

func parseUnit(t *testing.T, code string) *parser.Unit {
	t.Helper()
	loader, err := parser.NewGrammarLoader()
	require.NoError(t, err)
	unit, err := parser.NewParser(loader, parser.Options{}).Parse("input.d.ts", []byte(code))
	require.NoError(t, err)
	t.Cleanup(unit.Close)
	return unit
}

func extractSource(t *testing.T, code string) (schema.Schema, error) {
	t.Helper()
	return ExtractUnit(parseUnit(t, code), Options{})
}

func mustExtract(t *testing.T, code string) schema.Schema {
	t.Helper()
	s, err := extractSource(t, code)
	require.NoError(t, err)
	return s
}

// fixedResolver resolves every supertype to the same name.
type fixedResolver []string

func (r fixedResolver) ResolveSupertype(*sitter.Node) ([]string, error) {
	return r, nil
}

func TestExtract_EnumAtRoot(t *testing.T) {
	s := mustExtract(t, `enum Color { Red, Green = 2 }`)

	out, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"__toplevel__":[{
		"kind":"enum","namespace":[],"name":"Color",
		"members":[
			{"question":false,"modifiers":[],"name":"Red","member":"property"},
			{"question":false,"modifiers":[],"name":"Green","member":"property"}
		]}]}`, string(out))
}

func TestExtract_HeritageThroughResolver(t *testing.T) {
	unit := parseUnit(t, `class A extends B {}`)

	s, err := Extract(unit.Root, unit.Source, fixedResolver{"NS", "B"}, Options{})
	require.NoError(t, err)

	require.Len(t, s[schema.DefaultToplevelKey], 1)
	class := s[schema.DefaultToplevelKey][0].(*schema.ClassLike)
	assert.Equal(t, schema.KindClass, class.Kind)
	assert.Equal(t, "A", class.Name)
	assert.Equal(t, [][]string{{"NS", "B"}}, class.Heritage)
	assert.Empty(t, class.Members)
}

func TestExtract_HeritageWithSymbolTable(t *testing.T) {
	s := mustExtract(t, `
declare namespace NS {
  class B {}
  interface I {}
  interface J {}
  class A extends B implements I, J {}
  interface K extends I, Array<string> {}
}`)

	decls := s["NS"]
	require.Len(t, decls, 6)
	a := decls[4].(*schema.ClassLike)
	assert.Equal(t, [][]string{{"NS", "B"}, {"NS", "I"}, {"NS", "J"}}, a.Heritage)
	k := decls[5].(*schema.ClassLike)
	assert.Equal(t, schema.KindInterface, k.Kind)
	assert.Equal(t, [][]string{{"NS", "I"}, {"Array"}}, k.Heritage)
	assert.Nil(t, decls[1].(*schema.ClassLike).Heritage)
}

func TestExtract_UnresolvedHeritageAborts(t *testing.T) {
	s, err := extractSource(t, `declare function ok(): void;
declare class A extends Missing {}`)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeResolutionFailure))
	assert.Nil(t, s)
}

func TestExtract_NamespaceGrouping(t *testing.T) {
	s := mustExtract(t, `
declare namespace A {
  namespace B {
    function g(): void;
    let x: number;
  }
  type T = string;
}
declare function f(): void;
`)

	require.Len(t, s[schema.DefaultToplevelKey], 1)
	assert.Equal(t, "f", s[schema.DefaultToplevelKey][0].(*schema.Function).Name)

	require.Len(t, s["A"], 2)
	assert.Equal(t, &schema.Generic{Kind: schema.KindModule, Namespace: []string{"A"}, Name: "A"}, s["A"][0])
	assert.Equal(t, &schema.Generic{Kind: schema.KindAlias, Namespace: []string{"A"}, Name: "T"}, s["A"][1])

	group := s["A.B"]
	require.Len(t, group, 3)
	assert.Equal(t, schema.KindModule, group[0].DeclKind())
	assert.Equal(t, "g", group[1].(*schema.Function).Name)
	assert.Equal(t, "x", group[2].(*schema.Variable).Name)
	for key, decls := range s {
		for _, d := range decls {
			assert.Equal(t, key, schema.NamespaceKey(d.NamespacePath(), schema.DefaultToplevelKey))
		}
	}
}

func TestExtract_DottedNamespace(t *testing.T) {
	s := mustExtract(t, `namespace A.B { export const v: string = ""; }`)

	require.Len(t, s, 2)
	assert.Equal(t, []schema.Declaration{
		&schema.Generic{Kind: schema.KindModule, Namespace: []string{"A"}, Name: "A"},
	}, s["A"])

	require.Len(t, s["A.B"], 2)
	assert.Equal(t, &schema.Generic{Kind: schema.KindModule, Namespace: []string{"A", "B"}, Name: "B"}, s["A.B"][0])
	v := s["A.B"][1].(*schema.Variable)
	assert.Equal(t, "v", v.Name)
	assert.Equal(t, []string{"A", "B"}, v.Namespace)
}

func TestExtract_DottedNamespaceNestedInModule(t *testing.T) {
	s := mustExtract(t, `declare namespace Outer { namespace X.Y { class C {} } }`)

	assert.Equal(t, "Outer", s["Outer"][0].(*schema.Generic).Name)
	assert.Equal(t, "X", s["Outer.X"][0].(*schema.Generic).Name)
	require.Len(t, s["Outer.X.Y"], 2)
	assert.Equal(t, "Y", s["Outer.X.Y"][0].(*schema.Generic).Name)
	assert.Equal(t, []string{"Outer", "X", "Y"}, s["Outer.X.Y"][1].(*schema.ClassLike).Namespace)
}

func TestExtract_AmbientModulesAndExports(t *testing.T) {
	s := mustExtract(t, `
export as namespace MyLib;
declare module "fs-extra" {
  export function copy(src: string, dest: string): Promise<void>;
}
declare global {
  interface Window { myLib: string }
}
`)

	require.Len(t, s[schema.DefaultToplevelKey], 1)
	assert.Equal(t, &schema.Export{
		Kind:      schema.KindExport,
		Namespace: []string{},
		Exported:  true,
		Export:    []string{"MyLib"},
	}, s[schema.DefaultToplevelKey][0])

	require.Len(t, s["fs-extra"], 2)
	assert.Equal(t, "fs-extra", s["fs-extra"][0].(*schema.Generic).Name)
	copyFn := s["fs-extra"][1].(*schema.Function)
	assert.Equal(t, schema.Opaque("Promise<void>"), copyFn.Type)
	require.Len(t, copyFn.Params, 2)

	require.Len(t, s["global"], 2)
	assert.Equal(t, "Window", s["global"][1].(*schema.ClassLike).Name)
}

func TestExtract_DestructuredParamsDropped(t *testing.T) {
	s := mustExtract(t, `declare function f(a: string, { b, c }: Opts, [d]: number[], ...rest: number[]): void;`)

	fn := s[schema.DefaultToplevelKey][0].(*schema.Function)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, "a", fn.Params[0].Name)
	assert.Equal(t, "rest", fn.Params[1].Name)
	assert.Equal(t, schema.NewArray(schema.Opaque("number")), fn.Params[1].Type)
	assert.Equal(t, schema.Opaque("void"), fn.Type)
}

func TestExtract_FunctionDefaults(t *testing.T) {
	s := mustExtract(t, `
function impl(x, y?: number) {
  function hidden(): void {}
  return x;
}`)

	decls := s[schema.DefaultToplevelKey]
	require.Len(t, decls, 1, "function bodies are not traversed")
	fn := decls[0].(*schema.Function)
	assert.Nil(t, fn.Type)
	require.Len(t, fn.Params, 2)
	assert.Equal(t, schema.Param{Name: "x", Modifiers: []schema.Modifier{}, Type: schema.Opaque("any")}, fn.Params[0])
	assert.True(t, fn.Params[1].Question)
}

func TestExtract_AnonymousDefaultFunction(t *testing.T) {
	s := mustExtract(t, `export default function (x: number): void {}`)

	decls := s[schema.DefaultToplevelKey]
	require.Len(t, decls, 1)
	assert.Equal(t, &schema.Function{
		Kind:      schema.KindFunction,
		Namespace: []string{},
		Params:    []schema.Param{{Name: "x", Modifiers: []schema.Modifier{}, Type: schema.Opaque("number")}},
		Type:      schema.Opaque("void"),
	}, decls[0])
}

func TestExtract_FunctionExpressionsOutsideDefaultExport(t *testing.T) {
	s := mustExtract(t, `
const fe = function (a: string) {};
export default function* gen(): Iterator<number> {}
`)

	decls := s[schema.DefaultToplevelKey]
	require.Len(t, decls, 2)
	assert.Equal(t, "fe", decls[0].(*schema.Variable).Name)
	assert.Equal(t, "gen", decls[1].(*schema.Function).Name)
}

func TestExtract_Variables(t *testing.T) {
	s := mustExtract(t, `
declare const VERSION: string;
export let a = 1, b: number = 2;
`)

	decls := s[schema.DefaultToplevelKey]
	require.Len(t, decls, 3)
	assert.Equal(t, &schema.Variable{Kind: schema.KindVariable, Namespace: []string{}, Name: "VERSION", Type: schema.Opaque("string")}, decls[0])
	assert.Nil(t, decls[1].(*schema.Variable).Type)
	assert.Equal(t, schema.Opaque("number"), decls[2].(*schema.Variable).Type)
}

func TestExtract_ClassMembers(t *testing.T) {
	s := mustExtract(t, `
declare class K {
  private static readonly x: number;
  name?: string;
  constructor(private readonly a: string, b?: number);
  get v(): number;
  protected m?(): void;
  [key: string]: any;
}`)

	members := s[schema.DefaultToplevelKey][0].(*schema.ClassLike).Members
	require.Len(t, members, 6)

	assert.Equal(t, schema.Member{
		Kind:      schema.MemberProperty,
		Name:      "x",
		Type:      schema.Opaque("number"),
		Modifiers: []schema.Modifier{schema.ModPrivate, schema.ModStatic, schema.ModReadonly},
	}, members[0])
	assert.True(t, members[1].Question)

	ctor := members[2]
	assert.Equal(t, schema.MemberConstructor, ctor.Kind)
	assert.Empty(t, ctor.Name)
	require.Len(t, ctor.Params, 2)
	assert.Equal(t, []schema.Modifier{schema.ModPrivate, schema.ModReadonly}, ctor.Params[0].Modifiers)
	assert.True(t, ctor.Params[1].Question)

	assert.Equal(t, schema.MemberGeneric, members[3].Kind)
	assert.Equal(t, "v", members[3].Name)

	assert.Equal(t, schema.MemberMethod, members[4].Kind)
	assert.True(t, members[4].Question)
	assert.Equal(t, []schema.Modifier{schema.ModProtected}, members[4].Modifiers)
	assert.Equal(t, schema.Opaque("void"), members[4].Type)

	assert.Equal(t, schema.MemberIndexSig, members[5].Kind)
	assert.Equal(t, schema.Opaque("any"), members[5].Type)
}

func TestExtract_TypeDescriptors(t *testing.T) {
	s := mustExtract(t, `
declare let u: string | number | null;
declare let i: (A | B) & C;
declare let cb: (err: Error, data?: string) => void;
declare let ctor: new (x: number) => Foo;
declare let list: ((a: string) => void)[];
declare let m: Map<string, number[]>;
declare let o: {
  a: string;
  b?: number;
  [k: string]: any;
  (): void;
  m(x: number): string;
  new (s: string): Foo;
};
`)
	decls := s[schema.DefaultToplevelKey]
	require.Len(t, decls, 7)
	typeOf := func(i int) schema.Type { return decls[i].(*schema.Variable).Type }

	assert.Equal(t, schema.NewUnion(schema.Opaque("string"), schema.Opaque("number"), schema.Opaque("null")), typeOf(0))
	assert.Equal(t, schema.NewIntersection(schema.Opaque("(A | B)"), schema.Opaque("C")), typeOf(1))
	assert.Equal(t, schema.NewCallable("", []schema.Param{
		{Name: "err", Modifiers: []schema.Modifier{}, Type: schema.Opaque("Error")},
		{Name: "data", Question: true, Modifiers: []schema.Modifier{}, Type: schema.Opaque("string")},
	}, schema.Opaque("void")), typeOf(2))
	assert.Equal(t, schema.NewCallable("", []schema.Param{
		{Name: "x", Modifiers: []schema.Modifier{}, Type: schema.Opaque("number")},
	}, schema.Opaque("Foo")), typeOf(3))
	assert.Equal(t, schema.NewArray(schema.Opaque("((a: string) => void)")), typeOf(4))
	assert.Equal(t, schema.Opaque("Map<string, number[]>"), typeOf(5))

	lit, ok := typeOf(6).(*schema.Literal)
	require.True(t, ok)
	kinds := make([]schema.MemberKind, 0, len(lit.Members))
	for _, m := range lit.Members {
		kinds = append(kinds, m.Kind)
	}
	assert.Equal(t, []schema.MemberKind{
		schema.MemberProperty, schema.MemberProperty, schema.MemberIndexSig,
		schema.MemberCallSig, schema.MemberMethod, schema.MemberConstructor,
	}, kinds)
	assert.True(t, lit.Members[1].Question)
	assert.Equal(t, schema.Opaque("Foo"), lit.Members[5].Type)
}

func TestExtract_OpaqueTypeOperators(t *testing.T) {
	s := mustExtract(t, `
declare let mp: { [K in keyof T]: T[K] };
declare let ro: { readonly [K in Keys]?: V };
declare let c: T extends string ? "s" : "n";
declare let k: keyof T;
declare let nested: { inner: { [P in K]: P } };
`)
	decls := s[schema.DefaultToplevelKey]
	require.Len(t, decls, 5)
	typeOf := func(i int) schema.Type { return decls[i].(*schema.Variable).Type }

	assert.Equal(t, schema.Opaque("{ [K in keyof T]: T[K] }"), typeOf(0))
	assert.Equal(t, schema.Opaque("{ readonly [K in Keys]?: V }"), typeOf(1))
	assert.Equal(t, schema.Opaque(`T extends string ? "s" : "n"`), typeOf(2))
	assert.Equal(t, schema.Opaque("keyof T"), typeOf(3))

	lit, ok := typeOf(4).(*schema.Literal)
	require.True(t, ok, "only the mapped type itself is opaque")
	require.Len(t, lit.Members, 1)
	assert.Equal(t, schema.Opaque("{ [P in K]: P }"), lit.Members[0].Type)
}

func TestExtract_ParameterPropertyModifierOrder(t *testing.T) {
	s := mustExtract(t, `class P { constructor(public readonly x: number, readonly y?: string) {} }`)

	members := s[schema.DefaultToplevelKey][0].(*schema.ClassLike).Members
	require.Len(t, members, 1)
	ctor := members[0]
	assert.Equal(t, schema.MemberConstructor, ctor.Kind)
	require.Len(t, ctor.Params, 2)
	assert.Equal(t, schema.Param{
		Name:      "x",
		Modifiers: []schema.Modifier{schema.ModPublic, schema.ModReadonly},
		Type:      schema.Opaque("number"),
	}, ctor.Params[0])
	assert.Equal(t, schema.Param{
		Name:      "y",
		Question:  true,
		Modifiers: []schema.Modifier{schema.ModReadonly},
		Type:      schema.Opaque("string"),
	}, ctor.Params[1])
}

func TestExtract_CallableTypeKeepsDestructuredParams(t *testing.T) {
	s := mustExtract(t, `declare let h: ({ a }: Opts) => void;`)

	callable := s[schema.DefaultToplevelKey][0].(*schema.Variable).Type.(*schema.Callable)
	require.Len(t, callable.Parameters, 1)
	assert.Equal(t, "{ a }", callable.Parameters[0].Name)
}

func TestExtract_UnsupportedModifiers(t *testing.T) {
	cases := map[string]string{
		"abstract method": `declare abstract class A { abstract m(): void; }`,
		"override field":  `class B extends Error { override message: string; }`,
		"override param":  `class C { constructor(override x: number) {} }`,
	}
	for name, code := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := extractSource(t, code)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeUnsupportedModifier), err.Error())
			assert.Nil(t, s)
		})
	}
}

func TestExtract_UnsupportedMember(t *testing.T) {
	_, err := extractSource(t, `class S { static { init(); } }`)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeUnsupportedMember))

	var de *errors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "class_static_block", de.Context[errors.CtxNodeKind])
	assert.Equal(t, 1, de.Context[errors.CtxLine])
}

func TestExtract_Deterministic(t *testing.T) {
	code := `
declare namespace NS {
  interface Base { id: string }
  class Impl implements Base { id: string; run(cb: (n: number) => void): Promise<void>; }
}
declare function top<T>(x: T | T[]): { value: T };
`
	first, err := json.Marshal(mustExtract(t, code))
	require.NoError(t, err)
	second, err := json.Marshal(mustExtract(t, code))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	decoded, err := schema.Decode(first)
	require.NoError(t, err)
	again, err := json.Marshal(decoded)
	require.NoError(t, err)
	assert.JSONEq(t, string(first), string(again))
}

func TestExtract_CustomToplevelKey(t *testing.T) {
	unit := parseUnit(t, `declare const x: number;`)
	s, err := ExtractUnit(unit, Options{ToplevelKey: "<root>"})
	require.NoError(t, err)
	assert.Contains(t, s, "<root>")
}

func TestExtract_EmptySource(t *testing.T) {
	s := mustExtract(t, "")
	assert.NotNil(t, s)
	assert.Empty(t, s)
}

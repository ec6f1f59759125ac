// Package ast defines the tagged-variant AST produced by the parser for
// SDL (.rel) source.
package ast

import "fmt"

// Pos is a source location.
type Pos struct {
	Line   int
	Column int
	Offset int
	File   string
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a source range, start inclusive and end exclusive.
type Span struct {
	Start Pos
	End   Pos
}

// Node is the base interface implemented by every AST node.
type Node interface {
	Position() Pos
	node()
}

// Expr is implemented by expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Type is implemented by type-expression nodes.
type Type interface {
	Node
	typeNode()
}

// Stmt is implemented by imperative metaprogramming statement nodes:
// DeclareVar, DeclareType, Function, ForLoop, Print, and Validation.
type Stmt interface {
	Node
	stmtNode()
}

type Base struct {
	Pos Pos
}

func (b Base) Position() Pos { return b.Pos }
func (Base) node()           {}

// File is one parsed .rel source file.
type File struct {
	Base
	Path    string
	Imports []*Import
	Exports []*Export
	Schemas []*Schema
	Enums   []*Enum
	Aliases []*TypeAlias
	Mixins  []*Mixin
	Vars    []*Variable
	Decls   []Stmt // DeclareVar / DeclareType / Function / Print / Validation, in source order
}

// ---- Top level ----

// Schema is a `define Name (<generics>)? (extends Parent)? (with Mixins)? { body }`.
type Schema struct {
	Base
	Name        string
	Generics    []string
	Extends     string
	Mixins      []string
	Fields      []*Field
	Validations []*Validation
}

func (*Schema) exprNode() {}

// Field is one member of a schema or inline object body.
type Field struct {
	Base
	Name         string
	Type         Type
	Optional     bool
	Default      Expr
	Computed     Expr
	Validations  []*Validation
	Conditionals []*Conditional
}

// Conditional is a `when cond { fields } (else when ... | else { fields })?`
// block, attached either to a schema body (as a pseudo-field named
// "conditional_<index>") or to a single field's trailing `when` chain.
type Conditional struct {
	Base
	Condition  Expr
	ThenType   Type
	ElseType   Type // nested *Conditional for "else when", nil otherwise
	ThenFields []*Field
	ElseFields []*Field
}

func (*Conditional) typeNode() {}

// ---- Types ----

// PrimitiveKind enumerates the built-in primitive type names.
type PrimitiveKind int

const (
	KString PrimitiveKind = iota
	KNumber
	KBoolean
	KObject
	KNull
	KUndefined
	KAny
	KUnknown
)

// Primitive is one of String/Number/Boolean/Object/Null/Undefined/Any/Unknown,
// or any other built-in type name from the lexer's TypeName table.
type Primitive struct {
	Base
	Kind PrimitiveKind
	// Name carries the original built-in-type-name lexeme (e.g. "email",
	// "uuid", "int", "positive") for names that don't map onto one of the
	// eight core PrimitiveKind values but still resolve lexically to
	// TypeName.
	Name string
}

func (*Primitive) typeNode() {}

// TypeIdentifier is a reference to a user-defined schema, enum, or alias.
type TypeIdentifier struct {
	Base
	Name string
}

func (*TypeIdentifier) typeNode() {}

// ArrayType is `inner[]`.
type ArrayType struct {
	Base
	Inner Type
}

func (*ArrayType) typeNode() {}

// UnionType is `T1 | T2 | ...`.
type UnionType struct {
	Base
	Types []Type
}

func (*UnionType) typeNode() {}

// GenericType is `Name<arg1, arg2, ...>`.
type GenericType struct {
	Base
	Name string
	Args []Type
}

func (*GenericType) typeNode() {}

// FunctionCallType is a type-returning function invocation `name(args...)`.
type FunctionCallType struct {
	Base
	Name string
	Args []Expr
}

func (*FunctionCallType) typeNode() {}

// ConstrainedType is `base & c1 & c2 & ...`; Constraints is never empty.
// A zero-constraint wrapper is illegal; the parser constructs the base
// type directly instead.
type ConstrainedType struct {
	Base
	BaseType    Type
	Constraints []*Constraint
}

func (*ConstrainedType) typeNode() {}

// ConditionalType wraps a *Conditional used in type position.
type ConditionalType struct {
	Base
	Conditional *Conditional
}

func (*ConditionalType) typeNode() {}

// LiteralType is `= <expr>`, a literal-valued type.
type LiteralType struct {
	Base
	Value Expr
}

func (*LiteralType) typeNode() {}

// InlineObjectType is `{ field, field, ... }` used in type position.
type InlineObjectType struct {
	Base
	Fields []*Field
}

func (*InlineObjectType) typeNode() {}

// ---- Constraints ----

// ConstraintKind enumerates the closed set of legal constraint names.
type ConstraintKind int

const (
	CMin ConstraintKind = iota
	CMax
	CMinLength
	CMaxLength
	CMatches
	CContains
	CStartsWith
	CEndsWith
	CHasUppercase
	CHasLowercase
	CHasNumber
	CHasSpecialChar
	CBetween
	CIn
	CNotIn
	CExists
	CEmpty
	CNull
	CFuture
	CPast
	CBefore
	CAfter
	CInteger
	CPositive
	CNegative
	CFloat
	CLiteral
)

var constraintKindNames = map[string]ConstraintKind{
	"min": CMin, "max": CMax, "minLength": CMinLength, "maxLength": CMaxLength,
	"matches": CMatches, "contains": CContains, "startsWith": CStartsWith,
	"endsWith": CEndsWith, "hasUppercase": CHasUppercase, "hasLowercase": CHasLowercase,
	"hasNumber": CHasNumber, "hasSpecialChar": CHasSpecialChar, "between": CBetween,
	"in": CIn, "notIn": CNotIn, "exists": CExists, "empty": CEmpty, "null": CNull,
	"future": CFuture, "past": CPast, "before": CBefore, "after": CAfter,
	"integer": CInteger, "positive": CPositive, "negative": CNegative,
	"float": CFloat, "literal": CLiteral,
}

// LookupConstraintKind resolves a constraint function name to its kind.
func LookupConstraintKind(name string) (ConstraintKind, bool) {
	k, ok := constraintKindNames[name]
	return k, ok
}

// Constraint is one link of a `&`-chained constraint list.
type Constraint struct {
	Base
	Kind  ConstraintKind
	Name  string // original lexeme, preserved for diagnostics
	Value Expr   // nil for argument-less constraints (e.g. exists, empty)
}

// ---- Expressions ----

// StringLit is a regular (escape-processed) string literal.
type StringLit struct {
	Base
	Value string
}

func (*StringLit) exprNode() {}

// RawStringLit is a raw (verbatim) string literal, used for regex patterns.
type RawStringLit struct {
	Base
	Value string
}

func (*RawStringLit) exprNode() {}

// NumberLit is an IEEE-754 double-precision numeric literal.
type NumberLit struct {
	Base
	Value float64
	Raw   string
}

func (*NumberLit) exprNode() {}

// BoolLit is a boolean literal.
type BoolLit struct {
	Base
	Value bool
}

func (*BoolLit) exprNode() {}

// NullLit is the `null` literal.
type NullLit struct{ Base }

func (*NullLit) exprNode() {}

// UndefinedLit is the `undefined` literal.
type UndefinedLit struct{ Base }

func (*UndefinedLit) exprNode() {}

// IdentifierExpr is a bare identifier reference.
type IdentifierExpr struct {
	Base
	Name string
}

func (*IdentifierExpr) exprNode() {}

// VariableRef is a `::name` reference into the compile-time variable
// environment.
type VariableRef struct {
	Base
	Name string
}

func (*VariableRef) exprNode() {}

// FieldAccessExpr is `a.b.c`.
type FieldAccessExpr struct {
	Base
	Path []string
}

func (*FieldAccessExpr) exprNode() {}

// FunctionCallExpr is `name(args...)` in expression position.
type FunctionCallExpr struct {
	Base
	Name string
	Args []Expr
}

func (*FunctionCallExpr) exprNode() {}

// MethodCallExpr is `receiver.path.method(args...)`.
type MethodCallExpr struct {
	Base
	ReceiverPath []string
	Method       string
	Args         []Expr
}

func (*MethodCallExpr) exprNode() {}

// BinaryOpExpr is a binary expression.
type BinaryOpExpr struct {
	Base
	Left  Expr
	Op    string
	Right Expr
}

func (*BinaryOpExpr) exprNode() {}

// UnaryOpExpr is a prefix unary expression.
type UnaryOpExpr struct {
	Base
	Op      string
	Operand Expr
}

func (*UnaryOpExpr) exprNode() {}

// GroupExpr is a parenthesized expression, kept so printers/generators can
// reproduce grouping where needed.
type GroupExpr struct {
	Base
	Inner Expr
}

func (*GroupExpr) exprNode() {}

// ArrayExpr is an array literal.
type ArrayExpr struct {
	Base
	Elems []Expr
}

func (*ArrayExpr) exprNode() {}

// ObjectEntry is one key/value pair of an ObjectExpr.
type ObjectEntry struct {
	Key   string
	Value Expr
}

// ObjectExpr is an object literal.
type ObjectExpr struct {
	Base
	Entries []ObjectEntry
}

func (*ObjectExpr) exprNode() {}

// RangeExpr is `start..end`.
type RangeExpr struct {
	Base
	Start Expr
	End   Expr
}

func (*RangeExpr) exprNode() {}

// ---- Imports / exports / enums / aliases / mixins ----

// Import is `import { a, b } from "path" (as alias)?`.
type Import struct {
	Base
	Path  string
	Items []string
	Alias string
}

// Export is `export A, B, C`.
type Export struct {
	Base
	Items []string
}

// Enum is `enum Name { v1, v2, ... }`.
type Enum struct {
	Base
	Name   string
	Values []string
}

// TypeAlias is the top-level `type Name = Type` form; `declare type` parses
// to a DeclareType statement instead.
type TypeAlias struct {
	Base
	Name string
	Type Type
}

// Variable is a top-level `let name = expr`.
type Variable struct {
	Base
	Name  string
	Value Expr
}

// Mixin is `mixin Name { fields }`.
type Mixin struct {
	Base
	Name   string
	Fields []*Field
}

// ---- Imperative metaprogramming sub-language ----

// DeclareVar is `declare var name (: type)? = expr`.
type DeclareVar struct {
	Base
	Name  string
	Type  Type // nil if not annotated
	Value Expr
}

func (*DeclareVar) stmtNode() {}

// DeclareType is `declare type name = type`.
type DeclareType struct {
	Base
	Name string
	Type Type
}

func (*DeclareType) stmtNode() {}

// Param is one function parameter.
type Param struct {
	Name string
	Type Type
}

// Function is a compile-time type-returning function:
// `@fn name(params) -> type { statements... return type }`.
type Function struct {
	Base
	Name       string
	Params     []Param
	ReturnKind Type
	Body       []Stmt
	BodyType   Type
}

func (*Function) stmtNode() {}

// ForLoop is a compile-time `for v in range { body_fields }` construct.
// Expansion binds Var across the range; BodyFields are parsed and kept, but
// no fields are generated from them.
type ForLoop struct {
	Base
	Var        string
	Range      Expr
	BodyFields []*Field
}

func (*ForLoop) stmtNode() {}

// Print is a compile-time `print(args...)` diagnostic statement.
type Print struct {
	Base
	Args []Expr
}

func (*Print) stmtNode() {}

// Validation is a cross-field `validate` rule, either free-standing at top
// level or attached to a schema/field.
type Validation struct {
	Base
	Rule    Expr
	Message string
}

func (*Validation) stmtNode() {}

// NewPos constructs a Pos; a small convenience used throughout the parser.
func NewPos(file string, line, column, offset int) Pos {
	return Pos{File: file, Line: line, Column: column, Offset: offset}
}

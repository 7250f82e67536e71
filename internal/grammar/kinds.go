// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package grammar

// Kind identifies a node of the expression grammar. The set is closed and the
// numeric values are stable; they index the name table below.
type Kind int

// Expression grammar node kinds.
const (
	XPath2 Kind = iota
	MatchPattern
	XPath
	Expr
	Pattern
	PathPattern
	Root
	RootDescendants
	SlashSlash
	Void
	PatternStep
	AxisChild
	AxisAttribute
	At
	IdKeyPattern
	IDLpar
	KeyLpar
	StringLiteral
	VarName
	ForExpr
	Return
	In
	QuantifiedExpr
	Some
	Every
	Satisfies
	IfExpr
	OrExpr
	AndExpr
	InstanceofExpr
	TreatExpr
	CastableExpr
	CastExpr
	ComparisonExpr
	RangeExpr
	AdditiveExpr
	MultiplicativeExpr
	UnaryExpr
	UnaryMinus
	UnaryPlus
	UnionExpr
	IntersectExceptExpr
	PathExpr
	StepExpr
	Dot
	Predicates
	DotDot
	AxisDescendant
	AxisSelf
	AxisDescendantOrSelf
	AxisFollowingSibling
	AxisFollowing
	AxisNamespace
	AxisParent
	AxisAncestor
	AxisPrecedingSibling
	AxisPreceding
	AxisAncestorOrSelf
	NodeTest
	NameTest
	QName
	Star
	NCNameColonStar
	StarColonNCName
	IntegerLiteral
	DecimalLiteral
	DoubleLiteral
	FunctionCall
	QNameLpar
	SingleType
	OccurrenceZeroOrOne
	SequenceType
	Empty
	QNameForSequenceType
	Item
	ElementTest
	ElementType
	ElementTypeForKindTest
	ElementTypeForDocumentTest
	Nillable
	AttributeTest
	AttributeType
	PITest
	NCNameForPI
	StringLiteralForKindTest
	DocumentTest
	CommentTest
	TextTest
	AnyKindTest
	SchemaContextPath
	SchemaGlobalContextSlash
	SchemaContextStepSlash
	LocalName
	QNameForItemType
	NodeName
	AnyName
	TypeName
	OccurrenceZeroOrMore
	OccurrenceOneOrMore

	kindCount
)

var kindNames = [kindCount]string{
	XPath2:                     "XPath2",
	MatchPattern:               "MatchPattern",
	XPath:                      "XPath",
	Expr:                       "Expr",
	Pattern:                    "Pattern",
	PathPattern:                "PathPattern",
	Root:                       "Root",
	RootDescendants:            "RootDescendants",
	SlashSlash:                 "SlashSlash",
	Void:                       "void",
	PatternStep:                "PatternStep",
	AxisChild:                  "AxisChild",
	AxisAttribute:              "AxisAttribute",
	At:                         "At",
	IdKeyPattern:               "IdKeyPattern",
	IDLpar:                     "IDLpar",
	KeyLpar:                    "KeyLpar",
	StringLiteral:              "StringLiteral",
	VarName:                    "VarName",
	ForExpr:                    "ForExpr",
	Return:                     "Return",
	In:                         "In",
	QuantifiedExpr:             "QuantifiedExpr",
	Some:                       "Some",
	Every:                      "Every",
	Satisfies:                  "Satisfies",
	IfExpr:                     "IfExpr",
	OrExpr:                     "OrExpr",
	AndExpr:                    "AndExpr",
	InstanceofExpr:             "InstanceofExpr",
	TreatExpr:                  "TreatExpr",
	CastableExpr:               "CastableExpr",
	CastExpr:                   "CastExpr",
	ComparisonExpr:             "ComparisonExpr",
	RangeExpr:                  "RangeExpr",
	AdditiveExpr:               "AdditiveExpr",
	MultiplicativeExpr:         "MultiplicativeExpr",
	UnaryExpr:                  "UnaryExpr",
	UnaryMinus:                 "UnaryMinus",
	UnaryPlus:                  "UnaryPlus",
	UnionExpr:                  "UnionExpr",
	IntersectExceptExpr:        "IntersectExceptExpr",
	PathExpr:                   "PathExpr",
	StepExpr:                   "StepExpr",
	Dot:                        "Dot",
	Predicates:                 "Predicates",
	DotDot:                     "DotDot",
	AxisDescendant:             "AxisDescendant",
	AxisSelf:                   "AxisSelf",
	AxisDescendantOrSelf:       "AxisDescendantOrSelf",
	AxisFollowingSibling:       "AxisFollowingSibling",
	AxisFollowing:              "AxisFollowing",
	AxisNamespace:              "AxisNamespace",
	AxisParent:                 "AxisParent",
	AxisAncestor:               "AxisAncestor",
	AxisPrecedingSibling:       "AxisPrecedingSibling",
	AxisPreceding:              "AxisPreceding",
	AxisAncestorOrSelf:         "AxisAncestorOrSelf",
	NodeTest:                   "NodeTest",
	NameTest:                   "NameTest",
	QName:                      "QName",
	Star:                       "Star",
	NCNameColonStar:            "NCNameColonStar",
	StarColonNCName:            "StarColonNCName",
	IntegerLiteral:             "IntegerLiteral",
	DecimalLiteral:             "DecimalLiteral",
	DoubleLiteral:              "DoubleLiteral",
	FunctionCall:               "FunctionCall",
	QNameLpar:                  "QNameLpar",
	SingleType:                 "SingleType",
	OccurrenceZeroOrOne:        "OccurrenceZeroOrOne",
	SequenceType:               "SequenceType",
	Empty:                      "Empty",
	QNameForSequenceType:       "QNameForSequenceType",
	Item:                       "Item",
	ElementTest:                "ElementTest",
	ElementType:                "ElementType",
	ElementTypeForKindTest:     "ElementTypeForKindTest",
	ElementTypeForDocumentTest: "ElementTypeForDocumentTest",
	Nillable:                   "Nillable",
	AttributeTest:              "AttributeTest",
	AttributeType:              "AttributeType",
	PITest:                     "PITest",
	NCNameForPI:                "NCNameForPI",
	StringLiteralForKindTest:   "StringLiteralForKindTest",
	DocumentTest:               "DocumentTest",
	CommentTest:                "CommentTest",
	TextTest:                   "TextTest",
	AnyKindTest:                "AnyKindTest",
	SchemaContextPath:          "SchemaContextPath",
	SchemaGlobalContextSlash:   "SchemaGlobalContextSlash",
	SchemaContextStepSlash:     "SchemaContextStepSlash",
	LocalName:                  "LocalName",
	QNameForItemType:           "QNameForItemType",
	NodeName:                   "NodeName",
	AnyName:                    "AnyName",
	TypeName:                   "TypeName",
	OccurrenceZeroOrMore:       "OccurrenceZeroOrMore",
	OccurrenceOneOrMore:        "OccurrenceOneOrMore",
}

// String returns the grammar name of the kind.
func (k Kind) String() string {
	if !k.Valid() {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Valid reports whether k is one of the enumerated kinds.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Count returns the number of enumerated kinds.
func Count() int {
	return int(kindCount)
}

// Lookup returns the kind with the given grammar name.
func Lookup(name string) (Kind, bool) {
	for i, n := range kindNames {
		if n == name {
			return Kind(i), true
		}
	}
	return 0, false
}

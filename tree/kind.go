package tree

import "strings"

// Kind is a syntactic category drawn from a closed enumeration. Names follow
// the upper-case token names used in configuration files and path queries,
// e.g. METHOD_DEF or LITERAL_IF.
type Kind uint16

const (
	Invalid Kind = iota

	// Structure.
	CompilationUnit
	PackageDef
	Import
	StaticImport
	ClassDef
	InterfaceDef
	EnumDef
	RecordDef
	AnnotationDef
	AnnotationFieldDef
	EnumConstantDef
	ObjBlock
	MethodDef
	CtorDef
	CompactCtorDef
	VariableDef
	Parameters
	ParameterDef
	RecordComponents
	RecordComponentDef
	StaticInit
	InstanceInit
	ExtendsClause
	ImplementsClause
	PermitsClause
	TypeParameters
	TypeParameter
	TypeArguments
	TypeArgument
	TypeUpperBounds
	TypeLowerBounds
	TypeExtensionAnd
	WildcardType
	GenericStart
	GenericEnd
	Modifiers
	Annotations
	Annotation
	AnnotationMemberValuePair
	AnnotationArrayInit
	At
	Type
	ArrayDeclarator

	// Statements and expressions.
	SList
	Expr
	Elist
	EmptyStat
	LabeledStat
	CaseGroup
	SwitchRule
	ForInit
	ForCondition
	ForIterator
	ForEachClause
	ResourceSpecification
	Resources
	Resource
	MethodCall
	MethodRef
	CtorCall
	SuperCtorCall
	Lambda
	IndexOp
	TypeCast
	ArrayInit
	PatternVariableDef

	// Punctuation.
	Ident
	Dot
	Semi
	Comma
	Colon
	DoubleColon
	LParen
	RParen
	LCurly
	RCurly
	RBrack
	Ellipsis
	Question

	// Keywords.
	LiteralClass
	LiteralInterface
	Enum
	LiteralRecord
	LiteralPublic
	LiteralPrivate
	LiteralProtected
	LiteralStatic
	Final
	Abstract
	LiteralNative
	LiteralSynchronized
	LiteralTransient
	LiteralVolatile
	Strictfp
	LiteralSealed
	LiteralNonSealed
	LiteralPermits
	LiteralVoid
	LiteralBoolean
	LiteralByte
	LiteralChar
	LiteralShort
	LiteralInt
	LiteralLong
	LiteralFloat
	LiteralDouble
	LiteralIf
	LiteralElse
	LiteralWhile
	LiteralDo
	DoWhile
	LiteralFor
	LiteralTry
	LiteralCatch
	LiteralFinally
	LiteralSwitch
	LiteralCase
	LiteralDefault
	LiteralReturn
	LiteralBreak
	LiteralContinue
	LiteralThrow
	LiteralThrows
	LiteralYield
	LiteralAssert
	LiteralNew
	LiteralInstanceof
	LiteralThis
	LiteralSuper
	LiteralTrue
	LiteralFalse
	LiteralNull

	// Literals.
	NumInt
	NumLong
	NumFloat
	NumDouble
	CharLiteral
	StringLiteral
	TextBlockLiteralBegin

	// Operators.
	Assign
	PlusAssign
	MinusAssign
	StarAssign
	DivAssign
	ModAssign
	SrAssign
	BsrAssign
	SlAssign
	BandAssign
	BxorAssign
	BorAssign
	Plus
	Minus
	Star
	Div
	Mod
	Sr
	Bsr
	Sl
	Band
	Bor
	Bxor
	Lor
	Land
	Equal
	NotEqual
	Lt
	Gt
	Le
	Ge
	UnaryMinus
	UnaryPlus
	Lnot
	Bnot
	Inc
	Dec
	PostInc
	PostDec

	// Comments. Only present in the tree when requested.
	SingleLineComment
	BlockCommentBegin

	// Other is assigned to grammar productions without a dedicated kind.
	Other

	kindCount
)

var kindNames = [kindCount]string{
	Invalid:                   "INVALID",
	CompilationUnit:           "COMPILATION_UNIT",
	PackageDef:                "PACKAGE_DEF",
	Import:                    "IMPORT",
	StaticImport:              "STATIC_IMPORT",
	ClassDef:                  "CLASS_DEF",
	InterfaceDef:              "INTERFACE_DEF",
	EnumDef:                   "ENUM_DEF",
	RecordDef:                 "RECORD_DEF",
	AnnotationDef:             "ANNOTATION_DEF",
	AnnotationFieldDef:        "ANNOTATION_FIELD_DEF",
	EnumConstantDef:           "ENUM_CONSTANT_DEF",
	ObjBlock:                  "OBJBLOCK",
	MethodDef:                 "METHOD_DEF",
	CtorDef:                   "CTOR_DEF",
	CompactCtorDef:            "COMPACT_CTOR_DEF",
	VariableDef:               "VARIABLE_DEF",
	Parameters:                "PARAMETERS",
	ParameterDef:              "PARAMETER_DEF",
	RecordComponents:          "RECORD_COMPONENTS",
	RecordComponentDef:        "RECORD_COMPONENT_DEF",
	StaticInit:                "STATIC_INIT",
	InstanceInit:              "INSTANCE_INIT",
	ExtendsClause:             "EXTENDS_CLAUSE",
	ImplementsClause:          "IMPLEMENTS_CLAUSE",
	PermitsClause:             "PERMITS_CLAUSE",
	TypeParameters:            "TYPE_PARAMETERS",
	TypeParameter:             "TYPE_PARAMETER",
	TypeArguments:             "TYPE_ARGUMENTS",
	TypeArgument:              "TYPE_ARGUMENT",
	TypeUpperBounds:           "TYPE_UPPER_BOUNDS",
	TypeLowerBounds:           "TYPE_LOWER_BOUNDS",
	TypeExtensionAnd:          "TYPE_EXTENSION_AND",
	WildcardType:              "WILDCARD_TYPE",
	GenericStart:              "GENERIC_START",
	GenericEnd:                "GENERIC_END",
	Modifiers:                 "MODIFIERS",
	Annotations:               "ANNOTATIONS",
	Annotation:                "ANNOTATION",
	AnnotationMemberValuePair: "ANNOTATION_MEMBER_VALUE_PAIR",
	AnnotationArrayInit:       "ANNOTATION_ARRAY_INIT",
	At:                        "AT",
	Type:                      "TYPE",
	ArrayDeclarator:           "ARRAY_DECLARATOR",
	SList:                     "SLIST",
	Expr:                      "EXPR",
	Elist:                     "ELIST",
	EmptyStat:                 "EMPTY_STAT",
	LabeledStat:               "LABELED_STAT",
	CaseGroup:                 "CASE_GROUP",
	SwitchRule:                "SWITCH_RULE",
	ForInit:                   "FOR_INIT",
	ForCondition:              "FOR_CONDITION",
	ForIterator:               "FOR_ITERATOR",
	ForEachClause:             "FOR_EACH_CLAUSE",
	ResourceSpecification:     "RESOURCE_SPECIFICATION",
	Resources:                 "RESOURCES",
	Resource:                  "RESOURCE",
	MethodCall:                "METHOD_CALL",
	MethodRef:                 "METHOD_REF",
	CtorCall:                  "CTOR_CALL",
	SuperCtorCall:             "SUPER_CTOR_CALL",
	Lambda:                    "LAMBDA",
	IndexOp:                   "INDEX_OP",
	TypeCast:                  "TYPECAST",
	ArrayInit:                 "ARRAY_INIT",
	PatternVariableDef:        "PATTERN_VARIABLE_DEF",
	Ident:                     "IDENT",
	Dot:                       "DOT",
	Semi:                      "SEMI",
	Comma:                     "COMMA",
	Colon:                     "COLON",
	DoubleColon:               "DOUBLE_COLON",
	LParen:                    "LPAREN",
	RParen:                    "RPAREN",
	LCurly:                    "LCURLY",
	RCurly:                    "RCURLY",
	RBrack:                    "RBRACK",
	Ellipsis:                  "ELLIPSIS",
	Question:                  "QUESTION",
	LiteralClass:              "LITERAL_CLASS",
	LiteralInterface:          "LITERAL_INTERFACE",
	Enum:                      "ENUM",
	LiteralRecord:             "LITERAL_RECORD",
	LiteralPublic:             "LITERAL_PUBLIC",
	LiteralPrivate:            "LITERAL_PRIVATE",
	LiteralProtected:          "LITERAL_PROTECTED",
	LiteralStatic:             "LITERAL_STATIC",
	Final:                     "FINAL",
	Abstract:                  "ABSTRACT",
	LiteralNative:             "LITERAL_NATIVE",
	LiteralSynchronized:       "LITERAL_SYNCHRONIZED",
	LiteralTransient:          "LITERAL_TRANSIENT",
	LiteralVolatile:           "LITERAL_VOLATILE",
	Strictfp:                  "STRICTFP",
	LiteralSealed:             "LITERAL_SEALED",
	LiteralNonSealed:          "LITERAL_NON_SEALED",
	LiteralPermits:            "LITERAL_PERMITS",
	LiteralVoid:               "LITERAL_VOID",
	LiteralBoolean:            "LITERAL_BOOLEAN",
	LiteralByte:               "LITERAL_BYTE",
	LiteralChar:               "LITERAL_CHAR",
	LiteralShort:              "LITERAL_SHORT",
	LiteralInt:                "LITERAL_INT",
	LiteralLong:               "LITERAL_LONG",
	LiteralFloat:              "LITERAL_FLOAT",
	LiteralDouble:             "LITERAL_DOUBLE",
	LiteralIf:                 "LITERAL_IF",
	LiteralElse:               "LITERAL_ELSE",
	LiteralWhile:              "LITERAL_WHILE",
	LiteralDo:                 "LITERAL_DO",
	DoWhile:                   "DO_WHILE",
	LiteralFor:                "LITERAL_FOR",
	LiteralTry:                "LITERAL_TRY",
	LiteralCatch:              "LITERAL_CATCH",
	LiteralFinally:            "LITERAL_FINALLY",
	LiteralSwitch:             "LITERAL_SWITCH",
	LiteralCase:               "LITERAL_CASE",
	LiteralDefault:            "LITERAL_DEFAULT",
	LiteralReturn:             "LITERAL_RETURN",
	LiteralBreak:              "LITERAL_BREAK",
	LiteralContinue:           "LITERAL_CONTINUE",
	LiteralThrow:              "LITERAL_THROW",
	LiteralThrows:             "LITERAL_THROWS",
	LiteralYield:              "LITERAL_YIELD",
	LiteralAssert:             "LITERAL_ASSERT",
	LiteralNew:                "LITERAL_NEW",
	LiteralInstanceof:         "LITERAL_INSTANCEOF",
	LiteralThis:               "LITERAL_THIS",
	LiteralSuper:              "LITERAL_SUPER",
	LiteralTrue:               "LITERAL_TRUE",
	LiteralFalse:              "LITERAL_FALSE",
	LiteralNull:               "LITERAL_NULL",
	NumInt:                    "NUM_INT",
	NumLong:                   "NUM_LONG",
	NumFloat:                  "NUM_FLOAT",
	NumDouble:                 "NUM_DOUBLE",
	CharLiteral:               "CHAR_LITERAL",
	StringLiteral:             "STRING_LITERAL",
	TextBlockLiteralBegin:     "TEXT_BLOCK_LITERAL_BEGIN",
	Assign:                    "ASSIGN",
	PlusAssign:                "PLUS_ASSIGN",
	MinusAssign:               "MINUS_ASSIGN",
	StarAssign:                "STAR_ASSIGN",
	DivAssign:                 "DIV_ASSIGN",
	ModAssign:                 "MOD_ASSIGN",
	SrAssign:                  "SR_ASSIGN",
	BsrAssign:                 "BSR_ASSIGN",
	SlAssign:                  "SL_ASSIGN",
	BandAssign:                "BAND_ASSIGN",
	BxorAssign:                "BXOR_ASSIGN",
	BorAssign:                 "BOR_ASSIGN",
	Plus:                      "PLUS",
	Minus:                     "MINUS",
	Star:                      "STAR",
	Div:                       "DIV",
	Mod:                       "MOD",
	Sr:                        "SR",
	Bsr:                       "BSR",
	Sl:                        "SL",
	Band:                      "BAND",
	Bor:                       "BOR",
	Bxor:                      "BXOR",
	Lor:                       "LOR",
	Land:                      "LAND",
	Equal:                     "EQUAL",
	NotEqual:                  "NOT_EQUAL",
	Lt:                        "LT",
	Gt:                        "GT",
	Le:                        "LE",
	Ge:                        "GE",
	UnaryMinus:                "UNARY_MINUS",
	UnaryPlus:                 "UNARY_PLUS",
	Lnot:                      "LNOT",
	Bnot:                      "BNOT",
	Inc:                       "INC",
	Dec:                       "DEC",
	PostInc:                   "POST_INC",
	PostDec:                   "POST_DEC",
	SingleLineComment:         "SINGLE_LINE_COMMENT",
	BlockCommentBegin:         "BLOCK_COMMENT_BEGIN",
	Other:                     "OTHER",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k := Kind(1); k < kindCount; k++ {
		m[kindNames[k]] = k
	}
	return m
}()

// String returns the upper-case token name of k.
func (k Kind) String() string {
	if k >= kindCount {
		return kindNames[Invalid]
	}
	return kindNames[k]
}

// Valid reports whether k is a member of the enumeration other than Invalid.
func (k Kind) Valid() bool {
	return k > Invalid && k < kindCount
}

// IsComment reports whether k is one of the comment kinds.
func (k Kind) IsComment() bool {
	return k == SingleLineComment || k == BlockCommentBegin
}

// ParseKind resolves a token name such as "LITERAL_IF". Matching is
// case-insensitive and surrounding whitespace is ignored.
func ParseKind(name string) (Kind, bool) {
	k, ok := kindsByName[strings.ToUpper(strings.TrimSpace(name))]
	return k, ok
}

// KindCount is the number of kinds including Invalid. Dispatch tables use it
// to size per-kind arrays.
const KindCount = int(kindCount)

// AllKinds returns every valid kind in enumeration order.
func AllKinds() []Kind {
	out := make([]Kind, 0, kindCount-1)
	for k := Kind(1); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

package parser

import (
	"strings"

	"github.com/jward/checkwalk/tree"
)

type action uint8

const (
	// actNode creates a node and descends into the grammar node's children.
	actNode action = iota
	// actSplice creates nothing; children are attached to the enclosing node.
	actSplice
	// actLeaf creates one node covering the whole grammar node as a token.
	actLeaf
)

type nodeRule struct {
	act  action
	kind tree.Kind
	// wrap applies to the named children of a spliced node.
	wrap []tree.Kind
	// plain leaves never take part in anchor or context lookups.
	plain bool
	// classify picks the kind of a leaf from its text.
	classify func(text string) tree.Kind
	// caseGroup routes statements into a synthesised SLIST.
	caseGroup bool
}

func node(k tree.Kind) nodeRule         { return nodeRule{act: actNode, kind: k} }
func splice(wrap ...tree.Kind) nodeRule { return nodeRule{act: actSplice, wrap: wrap} }
func leaf(k tree.Kind) nodeRule         { return nodeRule{act: actLeaf, kind: k} }
func plainLeaf(k tree.Kind) nodeRule    { return nodeRule{act: actLeaf, kind: k, plain: true} }

func classified(f func(string) tree.Kind) nodeRule {
	return nodeRule{act: actLeaf, plain: true, classify: f}
}

var commentTypes = map[string]bool{
	"comment":       true,
	"line_comment":  true,
	"block_comment": true,
}

var nodeRules = map[string]nodeRule{
	"package_declaration": node(tree.PackageDef),
	"import_declaration":  node(tree.Import),
	"asterisk":            leaf(tree.Star),

	"class_declaration":                   node(tree.ClassDef),
	"interface_declaration":               node(tree.InterfaceDef),
	"enum_declaration":                    node(tree.EnumDef),
	"record_declaration":                  node(tree.RecordDef),
	"annotation_type_declaration":         node(tree.AnnotationDef),
	"annotation_type_element_declaration": node(tree.AnnotationFieldDef),
	"enum_constant":                       node(tree.EnumConstantDef),
	"class_body":                          node(tree.ObjBlock),
	"interface_body":                      node(tree.ObjBlock),
	"enum_body":                           node(tree.ObjBlock),
	"annotation_type_body":                node(tree.ObjBlock),
	"enum_body_declarations":              splice(),
	"method_declaration":                  node(tree.MethodDef),
	"constructor_declaration":             node(tree.CtorDef),
	"compact_constructor_declaration":     node(tree.CompactCtorDef),
	"field_declaration":                   node(tree.VariableDef),
	"local_variable_declaration":          node(tree.VariableDef),
	"constant_declaration":                node(tree.VariableDef),
	"formal_parameters":                   node(tree.Parameters),
	"inferred_parameters":                 node(tree.Parameters),
	"formal_parameter":                    node(tree.ParameterDef),
	"spread_parameter":                    node(tree.ParameterDef),
	"receiver_parameter":                  node(tree.ParameterDef),
	"catch_formal_parameter":              node(tree.ParameterDef),
	"static_initializer":                  node(tree.StaticInit),
	"superclass":                          node(tree.ExtendsClause),
	"extends_interfaces":                  node(tree.ExtendsClause),
	"super_interfaces":                    node(tree.ImplementsClause),
	"permits":                             node(tree.PermitsClause),
	"type_list":                           splice(),
	"type_parameters":                     node(tree.TypeParameters),
	"type_parameter":                      node(tree.TypeParameter),
	"type_bound":                          node(tree.TypeUpperBounds),
	"type_arguments":                      node(tree.TypeArguments),
	"wildcard":                            node(tree.TypeArgument),
	"throws":                              node(tree.LiteralThrows),

	"modifiers":                       node(tree.Modifiers),
	"marker_annotation":               node(tree.Annotation),
	"annotation":                      node(tree.Annotation),
	"annotation_argument_list":        splice(),
	"element_value_pair":              node(tree.AnnotationMemberValuePair),
	"element_value_array_initializer": node(tree.AnnotationArrayInit),

	"block":                        node(tree.SList),
	"constructor_body":             node(tree.SList),
	"expression_statement":         splice(tree.Expr),
	"labeled_statement":            node(tree.LabeledStat),
	"if_statement":                 node(tree.LiteralIf),
	"while_statement":              node(tree.LiteralWhile),
	"do_statement":                 node(tree.LiteralDo),
	"for_statement":                node(tree.LiteralFor),
	"enhanced_for_statement":       node(tree.LiteralFor),
	"try_statement":                node(tree.LiteralTry),
	"try_with_resources_statement": node(tree.LiteralTry),
	"catch_clause":                 node(tree.LiteralCatch),
	"catch_type":                   node(tree.Type),
	"finally_clause":               node(tree.LiteralFinally),
	"resource_specification":       node(tree.ResourceSpecification),
	"resource":                     node(tree.Resource),
	"switch_expression":            node(tree.LiteralSwitch),
	"switch_statement":             node(tree.LiteralSwitch),
	"switch_block":                 splice(),
	"switch_block_statement_group": {act: actNode, kind: tree.CaseGroup, caseGroup: true},
	"switch_label":                 node(tree.LiteralCase),
	"switch_rule":                  node(tree.SwitchRule),
	"return_statement":             node(tree.LiteralReturn),
	"break_statement":              node(tree.LiteralBreak),
	"continue_statement":           node(tree.LiteralContinue),
	"throw_statement":              node(tree.LiteralThrow),
	"yield_statement":              node(tree.LiteralYield),
	"synchronized_statement":       node(tree.LiteralSynchronized),
	"assert_statement":             node(tree.LiteralAssert),

	"lambda_expression":               node(tree.Lambda),
	"ternary_expression":              node(tree.Question),
	"binary_expression":               node(tree.Other),
	"unary_expression":                node(tree.Other),
	"update_expression":               node(tree.Other),
	"assignment_expression":           node(tree.Assign),
	"cast_expression":                 node(tree.TypeCast),
	"instanceof_expression":           node(tree.LiteralInstanceof),
	"parenthesized_expression":        splice(),
	"object_creation_expression":      node(tree.LiteralNew),
	"array_creation_expression":       node(tree.LiteralNew),
	"dimensions_expr":                 node(tree.ArrayDeclarator),
	"dimensions":                      splice(),
	"array_initializer":               node(tree.ArrayInit),
	"array_access":                    node(tree.IndexOp),
	"field_access":                    node(tree.Dot),
	"scoped_identifier":               node(tree.Dot),
	"scoped_type_identifier":          node(tree.Dot),
	"class_literal":                   node(tree.Dot),
	"method_invocation":               node(tree.MethodCall),
	"explicit_constructor_invocation": node(tree.CtorCall),
	"method_reference":                node(tree.MethodRef),
	"argument_list":                   node(tree.Elist),
	"generic_type":                    splice(),
	"array_type":                      splice(),
	"annotated_type":                  splice(),
	"variable_declarator":             splice(),

	"identifier":      plainLeaf(tree.Ident),
	"type_identifier": plainLeaf(tree.Ident),
	"this":            leaf(tree.LiteralThis),
	"super":           leaf(tree.LiteralSuper),
	"true":            plainLeaf(tree.LiteralTrue),
	"false":           plainLeaf(tree.LiteralFalse),
	"null_literal":    plainLeaf(tree.LiteralNull),

	"integral_type":       classified(keywordKind),
	"floating_point_type": classified(keywordKind),
	"boolean_type":        classified(keywordKind),
	"void_type":           classified(keywordKind),

	"decimal_integer_literal":        classified(integerKind),
	"hex_integer_literal":            classified(integerKind),
	"octal_integer_literal":          classified(integerKind),
	"binary_integer_literal":         classified(integerKind),
	"decimal_floating_point_literal": classified(floatKind),
	"hex_floating_point_literal":     classified(floatKind),
	"character_literal":              plainLeaf(tree.CharLiteral),
	"string_literal":                 classified(stringKind),
	"text_block":                     plainLeaf(tree.TextBlockLiteralBegin),
}

// anchors give a node the kind and position of a keyword or operator
// token among its direct children.
var anchors = map[string]map[string]tree.Kind{
	"package_declaration":             {"package": tree.PackageDef},
	"import_declaration":              {"import": tree.Import},
	"if_statement":                    {"if": tree.LiteralIf},
	"while_statement":                 {"while": tree.LiteralWhile},
	"do_statement":                    {"do": tree.LiteralDo},
	"for_statement":                   {"for": tree.LiteralFor},
	"enhanced_for_statement":          {"for": tree.LiteralFor},
	"try_statement":                   {"try": tree.LiteralTry},
	"try_with_resources_statement":    {"try": tree.LiteralTry},
	"catch_clause":                    {"catch": tree.LiteralCatch},
	"finally_clause":                  {"finally": tree.LiteralFinally},
	"switch_expression":               {"switch": tree.LiteralSwitch},
	"switch_statement":                {"switch": tree.LiteralSwitch},
	"switch_label":                    {"case": tree.LiteralCase, "default": tree.LiteralDefault},
	"return_statement":                {"return": tree.LiteralReturn},
	"break_statement":                 {"break": tree.LiteralBreak},
	"continue_statement":              {"continue": tree.LiteralContinue},
	"throw_statement":                 {"throw": tree.LiteralThrow},
	"yield_statement":                 {"yield": tree.LiteralYield},
	"synchronized_statement":          {"synchronized": tree.LiteralSynchronized},
	"assert_statement":                {"assert": tree.LiteralAssert},
	"labeled_statement":               {":": tree.LabeledStat},
	"object_creation_expression":      {"new": tree.LiteralNew},
	"array_creation_expression":       {"new": tree.LiteralNew},
	"block":                           {"{": tree.SList},
	"constructor_body":                {"{": tree.SList},
	"array_initializer":               {"{": tree.ArrayInit},
	"element_value_array_initializer": {"{": tree.AnnotationArrayInit},
	"static_initializer":              {"static": tree.StaticInit},
	"throws":                          {"throws": tree.LiteralThrows},
	"superclass":                      {"extends": tree.ExtendsClause},
	"extends_interfaces":              {"extends": tree.ExtendsClause},
	"super_interfaces":                {"implements": tree.ImplementsClause},
	"permits":                         {"permits": tree.PermitsClause},
	"type_bound":                      {"extends": tree.TypeUpperBounds},
	"cast_expression":                 {"(": tree.TypeCast},
	"ternary_expression":              {"?": tree.Question},
	"instanceof_expression":           {"instanceof": tree.LiteralInstanceof},
	"lambda_expression":               {"->": tree.Lambda},
	"method_reference":                {"::": tree.MethodRef},
	"field_access":                    {".": tree.Dot},
	"scoped_identifier":               {".": tree.Dot},
	"scoped_type_identifier":          {".": tree.Dot},
	"class_literal":                   {".": tree.Dot},
	"array_access":                    {"[": tree.IndexOp},
	"dimensions_expr":                 {"[": tree.ArrayDeclarator},
	"explicit_constructor_invocation": {"this": tree.CtorCall, "super": tree.SuperCtorCall},
	"binary_expression": {
		"+": tree.Plus, "-": tree.Minus, "*": tree.Star, "/": tree.Div, "%": tree.Mod,
		">>": tree.Sr, ">>>": tree.Bsr, "<<": tree.Sl,
		"&": tree.Band, "|": tree.Bor, "^": tree.Bxor, "||": tree.Lor, "&&": tree.Land,
		"==": tree.Equal, "!=": tree.NotEqual, "<": tree.Lt, ">": tree.Gt, "<=": tree.Le, ">=": tree.Ge,
	},
	"assignment_expression": {
		"=": tree.Assign, "+=": tree.PlusAssign, "-=": tree.MinusAssign, "*=": tree.StarAssign,
		"/=": tree.DivAssign, "%=": tree.ModAssign, ">>=": tree.SrAssign, ">>>=": tree.BsrAssign,
		"<<=": tree.SlAssign, "&=": tree.BandAssign, "^=": tree.BxorAssign, "|=": tree.BorAssign,
	},
	"unary_expression": {"-": tree.UnaryMinus, "+": tree.UnaryPlus, "!": tree.Lnot, "~": tree.Bnot},
}

// retags change the enclosing node's kind when a token is seen, without
// moving its anchor. The token itself still becomes a leaf.
var retags = map[string]map[string]tree.Kind{
	"import_declaration": {"static": tree.StaticImport},
}

type adopter struct {
	kind tree.Kind
	wrap tree.Kind
}

// adopters turn a token into a node that owns the next sibling.
var adopters = map[string]map[string]adopter{
	"if_statement":        {"else": {kind: tree.LiteralElse}},
	"variable_declarator": {"=": {kind: tree.Assign, wrap: tree.Expr}},
	"resource":            {"=": {kind: tree.Assign, wrap: tree.Expr}},
}

// hasModifiers lists the declarations that always carry a MODIFIERS
// child, empty when the source has none.
var hasModifiers = map[string]bool{
	"class_declaration":                   true,
	"interface_declaration":               true,
	"enum_declaration":                    true,
	"record_declaration":                  true,
	"annotation_type_declaration":         true,
	"annotation_type_element_declaration": true,
	"method_declaration":                  true,
	"constructor_declaration":             true,
	"compact_constructor_declaration":     true,
	"field_declaration":                   true,
	"local_variable_declaration":          true,
	"constant_declaration":                true,
	"formal_parameter":                    true,
	"spread_parameter":                    true,
	"catch_formal_parameter":              true,
}

// parenStatements are the statements whose syntax includes the
// parentheses around their condition.
var parenStatements = map[string]bool{
	"if_statement":           true,
	"while_statement":        true,
	"do_statement":           true,
	"switch_expression":      true,
	"switch_statement":       true,
	"synchronized_statement": true,
}

// noWrap lists grammar nodes that are never wrapped in EXPR by an adopter.
var noWrap = map[string]bool{
	"array_initializer": true,
}

var annotationNoWrap = map[string][]tree.Kind{
	"#annotation":                      nil,
	"#marker_annotation":               nil,
	"#element_value_array_initializer": nil,
	"*":                                {tree.Expr},
}

// wrapChild synthesises wrapper nodes around named children. Keys are
// "#<grammar type>", a field name, or "*" for any named child; they are
// tried in that order. A nil entry means no wrapper.
var wrapChild = map[string]map[string][]tree.Kind{
	"if_statement":           {"condition": {tree.Expr}},
	"while_statement":        {"condition": {tree.Expr}},
	"do_statement":           {"condition": {tree.Expr}},
	"switch_expression":      {"condition": {tree.Expr}},
	"switch_statement":       {"condition": {tree.Expr}},
	"synchronized_statement": {"#parenthesized_expression": {tree.Expr}},
	"for_statement": {
		"init":      {tree.ForInit},
		"condition": {tree.ForCondition, tree.Expr},
		"update":    {tree.ForIterator},
	},
	"enhanced_for_statement": {"value": {tree.Expr}},
	"return_statement":       {"*": {tree.Expr}},
	"throw_statement":        {"*": {tree.Expr}},
	"yield_statement":        {"*": {tree.Expr}},
	"assert_statement":       {"*": {tree.Expr}},
	"switch_label":           {"*": {tree.Expr}},
	"argument_list":          {"*": {tree.Expr}},
	"array_initializer":      {"#array_initializer": nil, "*": {tree.Expr}},
	"annotation_argument_list": {
		"#element_value_pair":              nil,
		"#annotation":                      nil,
		"#marker_annotation":               nil,
		"#element_value_array_initializer": nil,
		"*":                                {tree.Expr},
	},
	"element_value_array_initializer": annotationNoWrap,
	"element_value_pair": {
		"key":                              nil,
		"#annotation":                      nil,
		"#marker_annotation":               nil,
		"#element_value_array_initializer": nil,
		"*":                                {tree.Expr},
	},
	"annotated_type":         {"#annotation": {tree.Annotations}, "#marker_annotation": {tree.Annotations}},
	"type_parameter":         {"#annotation": {tree.Annotations}, "#marker_annotation": {tree.Annotations}},
	"type_arguments":         {"#wildcard": nil, "#annotation": nil, "#marker_annotation": nil, "*": {tree.TypeArgument}},
	"instanceof_expression":  {"right": {tree.Type}},
	"class_body":             {"#block": {tree.InstanceInit}},
	"enum_body_declarations": {"#block": {tree.InstanceInit}},
}

// Declared types are wrapped in TYPE except where the type names what is
// being instantiated.
var noTypeWrap = map[string]bool{
	"object_creation_expression": true,
	"array_creation_expression":  true,
}

// contextKinds override tokenKinds for tokens under a given grammar node.
var contextKinds = map[string]map[string]tree.Kind{
	"type_arguments":  {"<": tree.GenericStart, ">": tree.GenericEnd},
	"type_parameters": {"<": tree.GenericStart, ">": tree.GenericEnd},
	"type_bound":      {"&": tree.TypeExtensionAnd},
	"do_statement":    {"while": tree.DoWhile},
	"wildcard":        {"?": tree.WildcardType, "extends": tree.TypeUpperBounds, "super": tree.TypeLowerBounds},
	"catch_type":      {"|": tree.Bor},
}

// emptyStatParents are the grammar nodes whose direct ";" children are
// empty statements.
var emptyStatParents = map[string]bool{
	"block":             true,
	"constructor_body":  true,
	"labeled_statement": true,
}

var statementFields = map[string]bool{
	"consequence": true,
	"alternative": true,
	"body":        true,
}

var tokenKinds = map[string]tree.Kind{
	"{": tree.LCurly, "}": tree.RCurly, "(": tree.LParen, ")": tree.RParen,
	"[": tree.ArrayDeclarator, "]": tree.RBrack, ";": tree.Semi, ",": tree.Comma,
	".": tree.Dot, "...": tree.Ellipsis, "@": tree.At, "::": tree.DoubleColon,
	":": tree.Colon, "?": tree.Question, "->": tree.Lambda, "=": tree.Assign,
	"|": tree.Bor, "&": tree.Band, "<": tree.Lt, ">": tree.Gt, "*": tree.Star,

	"class": tree.LiteralClass, "interface": tree.LiteralInterface, "@interface": tree.LiteralInterface,
	"enum": tree.Enum, "record": tree.LiteralRecord,
	"public": tree.LiteralPublic, "private": tree.LiteralPrivate, "protected": tree.LiteralProtected,
	"static": tree.LiteralStatic, "final": tree.Final, "abstract": tree.Abstract,
	"native": tree.LiteralNative, "synchronized": tree.LiteralSynchronized,
	"transient": tree.LiteralTransient, "volatile": tree.LiteralVolatile, "strictfp": tree.Strictfp,
	"sealed": tree.LiteralSealed, "non-sealed": tree.LiteralNonSealed, "permits": tree.LiteralPermits,
	"default": tree.LiteralDefault,

	"void": tree.LiteralVoid, "boolean": tree.LiteralBoolean, "byte": tree.LiteralByte,
	"char": tree.LiteralChar, "short": tree.LiteralShort, "int": tree.LiteralInt,
	"long": tree.LiteralLong, "float": tree.LiteralFloat, "double": tree.LiteralDouble,

	"if": tree.LiteralIf, "else": tree.LiteralElse, "while": tree.LiteralWhile, "do": tree.LiteralDo,
	"for": tree.LiteralFor, "try": tree.LiteralTry, "catch": tree.LiteralCatch,
	"finally": tree.LiteralFinally, "switch": tree.LiteralSwitch, "case": tree.LiteralCase,
	"return": tree.LiteralReturn, "break": tree.LiteralBreak, "continue": tree.LiteralContinue,
	"throw": tree.LiteralThrow, "throws": tree.LiteralThrows, "yield": tree.LiteralYield,
	"assert": tree.LiteralAssert, "new": tree.LiteralNew, "instanceof": tree.LiteralInstanceof,
	"this": tree.LiteralThis, "super": tree.LiteralSuper,
}

func keywordKind(text string) tree.Kind {
	if k, ok := tokenKinds[text]; ok {
		return k
	}
	return tree.Ident
}

func integerKind(text string) tree.Kind {
	if strings.HasSuffix(text, "l") || strings.HasSuffix(text, "L") {
		return tree.NumLong
	}
	return tree.NumInt
}

func floatKind(text string) tree.Kind {
	last := text[len(text)-1]
	if last == 'f' || last == 'F' {
		return tree.NumFloat
	}
	return tree.NumDouble
}

func stringKind(text string) tree.Kind {
	if strings.HasPrefix(text, `"""`) {
		return tree.TextBlockLiteralBegin
	}
	return tree.StringLiteral
}

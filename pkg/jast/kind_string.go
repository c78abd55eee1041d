package jast

var kindNames = [...]string{
	NodeBad:             "Bad",
	NodeCompilationUnit: "CompilationUnit",
	NodeClass:           "Class",
	NodeField:           "Field",
	NodeMethod:          "Method",
	NodeParam:           "Param",
	NodeModifier:        "Modifier",
	NodeType:            "Type",
	NodeFragment:        "Fragment",
	NodeBlock:           "Block",
	NodeEmpty:           "Empty",
	NodeLocalVar:        "LocalVar",
	NodeExprStmt:        "ExprStmt",
	NodeIf:              "If",
	NodeWhile:           "While",
	NodeDo:              "Do",
	NodeFor:             "For",
	NodeSwitch:          "Switch",
	NodeCase:            "Case",
	NodeBreak:           "Break",
	NodeContinue:        "Continue",
	NodeReturn:          "Return",
	NodeThrow:           "Throw",
	NodeTry:             "Try",
	NodeCatch:           "Catch",
	NodeAssert:          "Assert",
	NodeLabeled:         "Labeled",
	NodeLiteral:         "Literal",
	NodeName:            "Name",
	NodeFieldAccess:     "FieldAccess",
	NodeCall:            "Call",
	NodeNew:             "New",
	NodeAssign:          "Assign",
	NodeUnary:           "Unary",
	NodePostfix:         "Postfix",
	NodeBinary:          "Binary",
	NodeConditional:     "Conditional",
	NodeParen:           "Paren",
	NodeInstanceOf:      "InstanceOf",
	NodeCast:            "Cast",
	NodeArrayAccess:     "ArrayAccess",
	NodeArrayInit:       "ArrayInit",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "Kind(?)"
}

var propNames = [...]string{
	PropNone:       "None",
	PropType:       "Type",
	PropInit:       "Init",
	PropCond:       "Cond",
	PropThen:       "Then",
	PropElse:       "Else",
	PropBody:       "Body",
	PropExpr:       "Expr",
	PropMessage:    "Message",
	PropLeft:       "Left",
	PropRight:      "Right",
	PropTarget:     "Target",
	PropFinally:    "Finally",
	PropMembers:    "Members",
	PropModifiers:  "Modifiers",
	PropParams:     "Params",
	PropThrows:     "Throws",
	PropFragments:  "Fragments",
	PropStatements: "Statements",
	PropInits:      "Inits",
	PropUpdates:    "Updates",
	PropCases:      "Cases",
	PropCatches:    "Catches",
	PropTypes:      "Types",
	PropArgs:       "Args",
}

func (p Prop) String() string {
	if int(p) < len(propNames) && propNames[p] != "" {
		return propNames[p]
	}
	return "Prop(?)"
}

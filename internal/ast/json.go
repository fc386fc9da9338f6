package ast

import "mano-lang/internal/span"

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
// Semantic annotations are included where they help downstream consumers
// (resolved and evaluated type names); symbol pointers are not serialized.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	case *Program:
		return m("Program", n.Span, "decls", declSlice(n.Decls))

	// ---- Types ----
	case *TypeNode:
		return m("Type", n.Span, "name", n.Name, "isArray", n.IsArray(), "isConst", n.IsConst)

	// ---- Declarations ----
	case *VarDecl:
		result := m("VariableDeclaration", n.Span,
			"name", n.Name,
			"declaredType", NodeToMap(n.DeclaredType))
		if n.Init != nil {
			result["initializer"] = NodeToMap(n.Init)
		}
		if n.ResolvedType != nil {
			result["resolvedType"] = n.ResolvedType.Name
		}
		return result
	case *FuncDecl:
		params := make([]interface{}, len(n.Params))
		for i, p := range n.Params {
			params[i] = map[string]interface{}{
				"name": p.Name,
				"type": NodeToMap(p.Type),
			}
		}
		result := m("FunctionDeclaration", n.Span,
			"name", n.Name,
			"parameters", params,
			"body", NodeToMap(n.Body))
		if n.ReturnType != nil {
			result["returnType"] = NodeToMap(n.ReturnType)
		}
		return result
	case *ClassDecl:
		return m("ClassDeclaration", n.Span, "name", n.Name, "body", NodeToMap(n.Body))
	case *EnumDecl:
		return m("EnumDeclaration", n.Span, "name", n.Name, "members", n.Members)

	// ---- Statements ----
	case *Block:
		return m("Block", n.Span, "stmts", nodeSlice(n.Stmts))
	case *ClassBlock:
		return m("ClassBlock", n.Span, "decls", declSlice(n.Decls))
	case *ExprStmt:
		return m("ExpressionStatement", n.Span, "expr", NodeToMap(n.X))
	case *ReturnStmt:
		result := m("ReturnStatement", n.Span)
		if n.Result != nil {
			result["expr"] = NodeToMap(n.Result)
		}
		return result
	case *IfStmt:
		result := m("IfStatement", n.Span,
			"condition", NodeToMap(n.Cond),
			"then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *ForStmt:
		result := m("ForStatement", n.Span,
			"condition", NodeToMap(n.Cond),
			"update", NodeToMap(n.Post),
			"body", NodeToMap(n.Body))
		if n.Init != nil {
			result["init"] = NodeToMap(n.Init)
		}
		return result
	case *WhileStmt:
		return m("WhileStatement", n.Span,
			"condition", NodeToMap(n.Cond),
			"body", NodeToMap(n.Body))
	case *SwitchStmt:
		cases := make([]interface{}, len(n.Cases))
		for i, c := range n.Cases {
			cases[i] = map[string]interface{}{
				"kind":  "SwitchCase",
				"span":  spanToMap(c.Span),
				"value": NodeToMap(c.Value),
				"body":  NodeToMap(c.Body),
			}
		}
		result := m("SwitchStatement", n.Span,
			"expr", NodeToMap(n.Tag),
			"cases", cases)
		if n.Default != nil {
			result["default"] = NodeToMap(n.Default)
		}
		return result
	case *BreakStmt:
		return m("BreakStatement", n.Span)
	case *ContinueStmt:
		return m("ContinueStatement", n.Span)

	// ---- Expressions ----
	case *BinaryExpr:
		result := m("BinaryExpression", n.Span,
			"op", n.Op.String(),
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
		if n.EvaluatedType != nil {
			result["evaluatedType"] = n.EvaluatedType.Name
		}
		return result
	case *UnaryExpr:
		return m("UnaryExpression", n.Span, "op", n.Op, "operand", NodeToMap(n.Operand))
	case *Literal:
		return m("Literal", n.Span, "value", n.Value)
	case *Ident:
		result := m("Identifier", n.Span, "name", n.Name)
		if n.EvaluatedType != nil {
			result["evaluatedType"] = n.EvaluatedType.Name
		}
		return result
	case *MemberAccess:
		return m("MemberAccess", n.Span,
			"object", NodeToMap(n.Object),
			"member", n.Member)
	case *IndexAccess:
		return m("IndexAccess", n.Span,
			"object", NodeToMap(n.Object),
			"index", NodeToMap(n.Index))
	case *ArrayLit:
		result := m("ArrayLiteral", n.Span, "elements", exprSlice(n.Elems))
		if n.EvaluatedType != nil {
			result["evaluatedType"] = n.EvaluatedType.Name
		}
		return result
	case *CallExpr:
		result := m("FunctionCall", n.Span, "args", exprSlice(n.Args))
		if n.Target != nil {
			result["callTarget"] = NodeToMap(n.Target)
		} else {
			result["name"] = n.Name
		}
		return result
	case *ObjectInstantiation:
		return m("ObjectInstantiation", n.Span,
			"name", n.ClassName,
			"args", exprSlice(n.Args))

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// ---- helpers ----

// m builds a map with kind, span, and extra key-value pairs.
func m(kind string, s span.Span, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"kind": kind,
		"span": spanToMap(s),
	}
	for i := 0; i+1 < len(kvs); i += 2 {
		key := kvs[i].(string)
		result[key] = kvs[i+1]
	}
	return result
}

func spanToMap(s span.Span) map[string]interface{} {
	return map[string]interface{}{
		"start": map[string]interface{}{
			"offset": s.Start.Offset,
			"line":   s.Start.Line,
			"column": s.Start.Column,
		},
		"end": map[string]interface{}{
			"offset": s.End.Offset,
			"line":   s.End.Line,
			"column": s.End.Column,
		},
	}
}

func nodeSlice(nodes []Node) []interface{} {
	result := make([]interface{}, len(nodes))
	for i, n := range nodes {
		result[i] = NodeToMap(n)
	}
	return result
}

func declSlice(decls []Decl) []interface{} {
	result := make([]interface{}, len(decls))
	for i, d := range decls {
		result[i] = NodeToMap(d)
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

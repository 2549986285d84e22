package sema

import "swiftsub/internal/ast"

// ---------------------------------------------------------------------------
// Return-path analysis
// ---------------------------------------------------------------------------

// blockCloses reports whether every path through the block reaches a return.
// Statements after a closing one are unreachable and do not reopen it.
func blockCloses(block *ast.BlockStmt) bool {
	for _, s := range block.Stmts {
		if stmtCloses(s) {
			return true
		}
	}
	return false
}

// stmtCloses reports whether a statement unconditionally returns. Loops
// never close: their body may run zero times.
func stmtCloses(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		if s.Else == nil {
			return false
		}
		return blockCloses(s.Then) && stmtCloses(s.Else)
	case *ast.BlockStmt:
		return blockCloses(s)
	}
	return false
}

// Package security implements rules for risky constructs.
package security

import (
	"fmt"
	"go/ast"
	"go/token"
	"regexp"
	"slices"
	"strings"

	"github.com/farcloser/ecoguard"
	"github.com/farcloser/ecoguard/internal/audit/shared"
)

const (
	HardcodedSecretID = "hardcoded-secret"
	WeakCryptoID      = "weak-crypto"
	InsecureTLSID     = "insecure-tls"
	ShellExecID       = "shell-exec"
)

//nolint:gochecknoglobals // configuration data, effectively const
var (
	secretName = regexp.MustCompile(`(?i)(passw(or)?d|passwd|secret|token|api_?key|private_?key|credential)`)

	weakPackages = map[string]string{
		"crypto/md5":  "MD5",
		"crypto/sha1": "SHA-1",
		"crypto/des":  "DES",
		"crypto/rc4":  "RC4",
	}

	shells = []string{"sh", "bash", "zsh", "/bin/sh", "/bin/bash", "/usr/bin/env", "cmd", "cmd.exe", "powershell"}
)

// Rules returns fresh instances of every security rule.
func Rules() []ecoguard.Rule {
	return []ecoguard.Rule{
		HardcodedSecret(),
		WeakCrypto(),
		InsecureTLS(),
		ShellExec(),
	}
}

func HardcodedSecret() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          HardcodedSecretID,
		Name:        "Hardcoded secret",
		Description: "String literal assigned to a credential-looking name",
		Category:    ecoguard.CategorySecurity,
		Severity:    ecoguard.SeverityCritical,
		Tags:        []string{"secrets", "cwe-798"},
	}

	report := func(rule *ecoguard.VisitorRule, name string, value ast.Expr) {
		literal, ok := shared.StringLiteral(value)
		if !ok || !secretName.MatchString(name) || looksLikePlaceholder(literal) {
			return
		}

		issue := rule.NewIssue(fmt.Sprintf("possible hardcoded secret in %q", name), value)
		issue.Impact = &ecoguard.Impact{SecurityRisk: 0.9, CostImpact: 0.5}
		issue.Fix = &ecoguard.Fix{
			Description:  "Load the value from the environment or a secret store",
			Confidence:   0.8,
			Instructions: "Rotate the exposed credential after removing it from the source",
		}

		rule.Report(issue)
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		switch typed := node.(type) {
		case *ast.ValueSpec:
			for idx, name := range typed.Names {
				if idx < len(typed.Values) {
					report(rule, name.Name, typed.Values[idx])
				}
			}
		case *ast.AssignStmt:
			if len(typed.Lhs) != len(typed.Rhs) {
				return true
			}

			for idx, lhs := range typed.Lhs {
				if name := exprName(lhs); name != "" {
					report(rule, name, typed.Rhs[idx])
				}
			}
		case *ast.KeyValueExpr:
			if name := exprName(typed.Key); name != "" {
				report(rule, name, typed.Value)
			}
		}

		return true
	}))
}

func exprName(expr ast.Expr) string {
	switch typed := expr.(type) {
	case *ast.Ident:
		return typed.Name
	case *ast.SelectorExpr:
		return typed.Sel.Name
	case *ast.BasicLit:
		if value, ok := shared.StringLiteral(typed); ok {
			return value
		}
	}

	return ""
}

func looksLikePlaceholder(value string) bool {
	if len(value) < shared.MinSecretChars || strings.ContainsAny(value, " \t\n") {
		return true
	}

	return strings.HasPrefix(value, "${") || strings.HasPrefix(value, "$(") ||
		strings.EqualFold(value, "changeme") || strings.Trim(value, "*xX") == ""
}

func WeakCrypto() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          WeakCryptoID,
		Name:        "Weak cryptography",
		Description: "Import of a broken hash or cipher package",
		Category:    ecoguard.CategorySecurity,
		Severity:    ecoguard.SeverityWarning,
		Tags:        []string{"crypto", "cwe-327"},
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		switch typed := node.(type) {
		case *ast.File, *ast.GenDecl:
			return true
		case *ast.ImportSpec:
			path, _ := shared.StringLiteral(typed.Path)
			if algorithm, weak := weakPackages[path]; weak {
				issue := rule.NewIssue(fmt.Sprintf("%s is cryptographically broken (%s)", algorithm, path), typed)
				issue.Impact = &ecoguard.Impact{SecurityRisk: 0.6}
				issue.Fix = &ecoguard.Fix{
					Description: "Use crypto/sha256 for hashing or crypto/aes with GCM for encryption",
					Confidence:  0.7,
				}

				rule.Report(issue)
			}
		}

		// Imports only appear at the top of the file.
		return false
	}))
}

func InsecureTLS() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          InsecureTLSID,
		Name:        "Insecure TLS",
		Description: "TLS certificate verification disabled",
		Category:    ecoguard.CategorySecurity,
		Severity:    ecoguard.SeverityError,
		Tags:        []string{"tls", "cwe-295"},
	}

	report := func(rule *ecoguard.VisitorRule, node ast.Node) {
		issue := rule.NewIssue("InsecureSkipVerify disables certificate verification", node)
		issue.Impact = &ecoguard.Impact{SecurityRisk: 0.8}
		issue.Fix = &ecoguard.Fix{
			Description:     "Keep verification on and trust the needed CA through RootCAs",
			ReplacementCode: "InsecureSkipVerify: false",
			Confidence:      0.9,
		}

		rule.Report(issue)
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		switch typed := node.(type) {
		case *ast.KeyValueExpr:
			if shared.IsIdent(typed.Key, "InsecureSkipVerify") && shared.IsIdent(typed.Value, "true") {
				report(rule, typed)
			}
		case *ast.AssignStmt:
			if typed.Tok != token.ASSIGN || len(typed.Lhs) != len(typed.Rhs) {
				return true
			}

			for idx, lhs := range typed.Lhs {
				if sel, ok := lhs.(*ast.SelectorExpr); ok && sel.Sel.Name == "InsecureSkipVerify" &&
					shared.IsIdent(typed.Rhs[idx], "true") {
					report(rule, typed)
				}
			}
		}

		return true
	}))
}

func ShellExec() *ecoguard.VisitorRule {
	info := ecoguard.RuleInfo{
		ID:          ShellExecID,
		Name:        "Shell execution",
		Description: "Command run through a shell interpreter, open to injection",
		Category:    ecoguard.CategorySecurity,
		Severity:    ecoguard.SeverityError,
		Tags:        []string{"injection", "cwe-78"},
	}

	return ecoguard.NewVisitorRule(info, ecoguard.VisitorFunc(func(node ast.Node, rule *ecoguard.VisitorRule) bool {
		call, ok := node.(*ast.CallExpr)
		if !ok {
			return true
		}

		pkg, name := shared.CallName(call)
		if pkg != "exec" {
			return true
		}

		args := call.Args

		switch name {
		case "Command":
		case "CommandContext":
			if len(args) == 0 {
				return true
			}

			args = args[1:]
		default:
			return true
		}

		if len(args) < 2 { //nolint:mnd // interpreter and its flag
			return true
		}

		shell, _ := shared.StringLiteral(args[0])
		flag, _ := shared.StringLiteral(args[1])

		if slices.Contains(shells, shell) && (flag == "-c" || strings.EqualFold(flag, "/c") || flag == "-Command") {
			issue := rule.NewIssue(fmt.Sprintf("command executed through %s %s", shell, flag), call)
			issue.Impact = &ecoguard.Impact{SecurityRisk: 0.8}
			issue.Fix = &ecoguard.Fix{
				Description: "Call the program directly with exec.Command(name, args...) and no shell",
				Confidence:  0.6,
			}

			rule.Report(issue)
		}

		return true
	}))
}

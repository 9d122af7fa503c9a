// Package analyzer runs the two-pass discovery/resolution analysis over
// a collected set of parsed modules, producing the diagnostics a run
// reports. It is a structural port of original_source/src/analyzer.py's
// Analyzer, generalized per the flattened ast.Node sequence (see
// internal/ast) so every statement - including what used to live inside
// an unwalked IfNode - passes through the walker.
package analyzer

import (
	"strings"

	"github.com/kestrelcode/vbalint/internal/ast"
	"github.com/kestrelcode/vbalint/internal/diagnostic"
	"github.com/kestrelcode/vbalint/internal/objectmodel"
	"github.com/kestrelcode/vbalint/internal/symtab"
)

// Option configures an Analyzer at construction time.
type Option func(*Analyzer)

// WithModules seeds the analyzer with modules to analyze, equivalent to
// calling AddModule for each.
func WithModules(modules ...*ast.Module) Option {
	return func(a *Analyzer) {
		a.modules = append(a.modules, modules...)
	}
}

// Analyzer holds the cross-module state an analysis run needs: the
// global scope seeded from the object model, the interned UDT table,
// and the collected modules.
type Analyzer struct {
	model         *objectmodel.Model
	modules       []*ast.Module
	global        *symtab.Scope
	udts          map[string]*ast.UDT
	procsByName   map[string][]*ast.Procedure
	modulesByName map[string]*ast.Module
	diagnostics   *diagnostic.Buffer
}

// New returns an Analyzer whose global scope is preloaded from model's
// globals, classes, and references.
func New(model *objectmodel.Model, opts ...Option) *Analyzer {
	a := &Analyzer{
		model:         model,
		global:        symtab.New("Global", nil, symtab.ScopeGlobal),
		udts:          map[string]*ast.UDT{},
		procsByName:   map[string][]*ast.Procedure{},
		modulesByName: map[string]*ast.Module{},
		diagnostics:   &diagnostic.Buffer{},
	}

	for name, g := range model.Globals {
		a.global.Define(name, g.TypeName(), symtab.KindUnknown)
	}
	for name := range model.Classes {
		a.global.Define(name, name, symtab.KindClass)
	}
	for _, ref := range model.References {
		a.global.Define(ref.Name, "Object", symtab.KindLibrary)
	}

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddModule registers a parsed module for analysis.
func (a *Analyzer) AddModule(m *ast.Module) {
	a.modules = append(a.modules, m)
}

// Analyze runs pass 1 (discovery) then pass 2 (resolution) over every
// added module and returns the collected diagnostics.
func (a *Analyzer) Analyze() *diagnostic.Buffer {
	a.pass1Discovery()
	a.pass2Resolution()
	return a.diagnostics
}

func isPublicLike(scope string) bool {
	switch strings.ToLower(scope) {
	case "public", "global", "friend":
		return true
	}
	return false
}

// pass1Discovery registers every module name and, for standard modules
// (not classes or forms), every public module-level variable/procedure
// and public UDT/enum into the global scope, so
// every procedure body walked in pass 2 sees the full cross-module
// surface regardless of file order.
func (a *Analyzer) pass1Discovery() {
	for _, mod := range a.modules {
		a.modulesByName[strings.ToLower(mod.Name)] = mod
		a.global.Define(mod.Name, mod.Name, symtab.Kind(mod.ModuleType))

		if strings.EqualFold(mod.Attributes["VB_PredeclaredId"], "true") {
			a.global.Define(mod.Name, mod.Name, symtab.Kind(mod.ModuleType))
		}

		for _, proc := range mod.Procedures {
			a.procsByName[strings.ToLower(proc.Name)] = append(a.procsByName[strings.ToLower(proc.Name)], proc)
		}

		if mod.ModuleType == "Module" {
			for _, v := range mod.Variables {
				if isPublicLike(v.Scope) {
					a.global.Define(v.Name, v.TypeName, symtab.KindVariable)
				}
			}
			for _, proc := range mod.Procedures {
				if strings.EqualFold(proc.Scope, "public") || strings.EqualFold(proc.Scope, "friend") {
					a.global.Define(proc.Name, proc.ReturnType, symtab.KindProcedure)
				}
			}
			for typeName, udt := range mod.Types {
				if strings.EqualFold(udt.Scope, "public") {
					a.global.Define(typeName, typeName, symtab.KindType)
					a.udts[strings.ToLower(typeName)] = udt
				}
			}
		} else {
			a.global.Define(mod.Name, mod.Name, symtab.KindClass)
			for typeName, udt := range mod.Types {
				if strings.EqualFold(udt.Scope, "public") {
					a.global.Define(typeName, typeName, symtab.KindType)
					a.udts[strings.ToLower(typeName)] = udt
				}
			}
		}
	}
}

// pass2Resolution builds each module's scope (pre-populated with every
// member regardless of visibility) and walks every procedure body.
func (a *Analyzer) pass2Resolution() {
	for _, mod := range a.modules {
		scopeType := symtab.ScopeModule
		switch mod.ModuleType {
		case "Class":
			scopeType = symtab.ScopeClass
		case "Form":
			scopeType = symtab.ScopeForm
		}
		modScope := symtab.New(mod.Name, a.global, scopeType)

		for _, v := range mod.Variables {
			modScope.Define(v.Name, v.TypeName, symtab.KindVariable)
		}
		for _, proc := range mod.Procedures {
			modScope.Define(proc.Name, proc.ReturnType, symtab.KindProcedure)
		}
		for typeName, udt := range mod.Types {
			modScope.Define(typeName, typeName, symtab.KindType)
			a.udts[strings.ToLower(typeName)] = udt
		}
		if mod.ModuleType == "Class" || mod.ModuleType == "Form" {
			modScope.Define("Me", mod.Name, symtab.KindVariable)
		}

		for _, proc := range mod.Procedures {
			a.analyzeProcedure(proc, modScope, mod)
		}
	}
}

func (a *Analyzer) analyzeProcedure(proc *ast.Procedure, modScope *symtab.Scope, mod *ast.Module) {
	procScope := symtab.New(proc.Name, modScope, symtab.ScopeProcedure)
	for _, arg := range proc.Args {
		procScope.Define(arg.Name, arg.TypeName, symtab.KindVariable)
	}
	a.analyzeBlock(proc.Body, procScope, mod.FileName, proc.Name, nil)
}

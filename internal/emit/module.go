package emit

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/NunaInc/nudl-go/internal/config"
	"github.com/NunaInc/nudl-go/internal/nudldebug"
	"github.com/NunaInc/nudl-go/internal/scope"
	"github.com/NunaInc/nudl-go/internal/types"
)

// ConvertedFile is one rendered file belonging to a module's conversion
// result: its own Python module file, plus a separate runnable
// entry-point file when the module declares a main function, plus a
// `<module>.schema.json` OpenAPI side file when it declares schemas.
type ConvertedFile struct {
	Name    string
	Content string
}

// ConversionResult is everything a single module's conversion produces,
// per spec's "for each analyzed module, one emitted target-language
// source file. A main function, if present, also produces a separate
// runnable entry-point file", grounded on python_converter.cc's
// ConversionResult/FinishModule.
type ConversionResult struct {
	Files []ConvertedFile
}

// moduleFileName turns a dotted module name into a Python source path,
// per python_converter.cc's PythonFileName (minus the ModuleFileReader
// layout rules this port has no on-disk module tree to mirror).
func moduleFileName(moduleName, suffix string) string {
	return strings.ReplaceAll(moduleName, ".", "/") + suffix
}

// ConvertModule renders module's whole expression stream into Python
// source, per python_converter.cc's ProcessModule: a header comment
// naming the module and its parse/analysis timings, the sorted import
// block, then the converted body. A declared main function is both
// emitted inline (so other statements can still call it) and rendered
// again as the separate entry-point file FinishModule produces.
func ConvertModule(module *scope.Module, cfg *config.Config) (*ConversionResult, error) {
	nudldebug.Tracef("emit: converting module %s (%d top-level expressions)",
		module.ScopeName().Name(), len(module.Expressions()))
	st := NewState(module.ScopeName().Name(), cfg)
	st.importPackage("nudl")
	if module.ScopeName().Name() != "nudl_builtins" {
		st.AddImport("from nudl_builtins import *")
	}

	for _, e := range module.Expressions() {
		if err := ConvertStatement(e, st); err != nil {
			return nil, fmt.Errorf("converting module %s: %w", module.ScopeName().Name(), err)
		}
	}

	result := &ConversionResult{}
	if mainFn, ok := module.MainFunction(); ok {
		if err := ensureFunctionEmitted(mainFn, st); err != nil {
			return nil, fmt.Errorf("converting main function of module %s: %w", module.ScopeName().Name(), err)
		}
		mainState := NewState(module.ScopeName().Name(), cfg)
		mainState.importPackage(module.ScopeName().Name())
		if err := ConvertMainFunction(mainFn, module.ScopeName().Name(), mainState); err != nil {
			return nil, fmt.Errorf("converting main function of module %s: %w", module.ScopeName().Name(), err)
		}
		result.Files = append(result.Files, ConvertedFile{
			Name:    moduleFileName(module.ScopeName().Name(), "_main.py"),
			Content: mainState.Source(),
		})
	}

	header := moduleHeader(module)
	result.Files = append(result.Files, ConvertedFile{
		Name:    moduleFileName(module.ScopeName().Name(), ".py"),
		Content: header + st.Source(),
	})

	if schemas := st.SchemaDefs(); len(schemas) > 0 {
		content, err := moduleOpenAPISchemas(schemas)
		if err != nil {
			return nil, fmt.Errorf("rendering OpenAPI schemas for module %s: %w", module.ScopeName().Name(), err)
		}
		result.Files = append(result.Files, ConvertedFile{
			Name:    moduleFileName(module.ScopeName().Name(), ".schema.json"),
			Content: content,
		})
	}
	return result, nil
}

// moduleOpenAPISchemas renders every top-level `schema` declaration of a
// module into one OpenAPI 3 components document, per spec's `schema`
// declaration producing a structural side-output consumable by external
// tooling, grounded on TypeSpec.OpenAPISchema.
func moduleOpenAPISchemas(schemas []*types.TypeSpec) (string, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.0",
		Info:    &openapi3.Info{Title: "NuDL schemas", Version: "0.0.0"},
		Paths:   openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas, len(schemas)),
		},
	}
	for _, s := range schemas {
		key := s.Name()
		for n := 2; ; n++ {
			if _, taken := doc.Components.Schemas[key]; !taken {
				break
			}
			key = fmt.Sprintf("%s_%d", s.Name(), n)
		}
		doc.Components.Schemas[key] = openapi3.NewSchemaRef("", s.OpenAPISchema())
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// moduleHeader renders the autogenerated banner comment, per
// python_converter.cc's ProcessModule header (module name, parse and
// analysis durations).
func moduleHeader(module *scope.Module) string {
	var b strings.Builder
	b.WriteString("''' ------- NuDL autogenerated module:\n")
	fmt.Fprintf(&b, "  Module Name: %s\n", module.ScopeName().Name())
	if d, ok := module.ParseDuration(); ok {
		fmt.Fprintf(&b, "  Parse Duration: %s\n", d)
	}
	if d, ok := module.AnalysisDuration(); ok {
		fmt.Fprintf(&b, "  Analysis Duration: %s\n", d)
	}
	b.WriteString("-----'''\n\n")
	return b.String()
}

package cli

import (
	"fmt"
	"sort"

	"github.com/toyz/apimod/internal/errors"
	"github.com/toyz/apimod/internal/models"
)

// CheckConsistency compares the implementation modules of a run with the
// definition modules they target. Targets generated outside the run are left
// to the Go compiler. Findings are warnings unless strict is set; two modules
// writing the same file are always errors.
func CheckConsistency(files []*models.GeneratedFile, strict bool) []*errors.BaseError {
	var findings []*errors.BaseError
	finding := func(loc errors.SourceLocation, format string, args ...interface{}) *errors.BaseError {
		err := errors.Newf(errors.ConsistencyErrorCode, format, args...).WithLocation(loc)
		if !strict {
			err.AsWarning()
		}
		findings = append(findings, err)
		return err
	}

	definitions := make(map[string]*models.GeneratedFile)
	implementations := make(map[string][]*models.GeneratedFile)
	outputs := make(map[string]*models.GeneratedFile)

	for _, file := range files {
		if previous, ok := outputs[file.FilePath]; ok {
			findings = append(findings, errors.Newf(errors.ConsistencyErrorCode,
				"module %s and module %s both generate %s", previous.Module, file.Module, file.FilePath).
				WithLocation(file.Source).
				WithContext("previous", previous.Source.String()).
				WithSuggestion("Rename one of the modules or change its visibility"))
			continue
		}
		outputs[file.FilePath] = file

		switch file.Kind {
		case models.KindDefinition:
			definitions[file.ImportPath] = file
		case models.KindImplementation:
			if file.Target != "" {
				implementations[file.Target] = append(implementations[file.Target], file)
			}
		}
	}

	targets := make([]string, 0, len(implementations))
	for target := range implementations {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	for _, target := range targets {
		impls := implementations[target]
		if len(impls) > 1 {
			for _, impl := range impls[1:] {
				finding(impl.Source, "%s is implemented more than once; first implementation is %s", target, impls[0].ImportPath).
					WithSuggestion("Only one implementation of an interface can be linked into a program")
			}
		}

		def, ok := definitions[target]
		if !ok {
			continue
		}
		declared := nameSet(def.Functions)
		for _, impl := range impls {
			implemented := nameSet(impl.Functions)
			for _, fn := range def.Functions {
				if !implemented[fn] {
					finding(impl.Source, "%s does not implement %s.%s", impl.ImportPath, def.Module, fn).
						WithContext("declared_at", def.Source.String())
				}
			}
			for _, fn := range impl.Functions {
				if !declared[fn] {
					finding(impl.Source, "%s implements %s, which %s does not declare", impl.ImportPath, fn, target).
						WithSuggestion(fmt.Sprintf("Declare %s in the definition module or remove it", fn))
				}
			}
		}
	}

	return findings
}

func nameSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}

package main

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/go/packages"
)

const quillModulePath = "github.com/quillfmt/quill"

type packageInfo struct {
	Dir     string
	Name    string
	Structs []structInfo
}

type structInfo struct {
	Name string
	// FormatLit is the quoted template literal the generated method
	// renders, e.g. "User{{id: {}, name: {}}}".
	FormatLit string
	Args      []string
}

//go:embed templates/quill_gen.gotemplate
var quillGenTemplate string

func findModuleRoot(start string) (string, string, error) {
	dir := start
	for {
		modPath := filepath.Join(dir, "go.mod")
		data, err := os.ReadFile(modPath)
		if err == nil {
			modulePath, err := parseModulePath(data)
			if err != nil {
				return "", "", err
			}
			return dir, modulePath, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("go.mod not found starting from %s", start)
		}
		dir = parent
	}
}

func parseModulePath(data []byte) (string, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "module ") {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				return fields[1], nil
			}
			return "", fmt.Errorf("module declaration malformed")
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("module path not found in go.mod")
}

func collectPackageInfos(root string) ([]*packageInfo, error) {
	dirs := make(map[string]struct{})
	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if shouldSkipDir(d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".go") {
			return nil
		}
		if strings.HasSuffix(d.Name(), "_test.go") {
			return nil
		}
		dirs[filepath.Dir(path)] = struct{}{}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	var infos []*packageInfo
	for dir := range dirs {
		pkgInfos, err := parsePackageDir(dir)
		if err != nil {
			return nil, err
		}
		infos = append(infos, pkgInfos...)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].Dir == infos[j].Dir {
			return infos[i].Name < infos[j].Name
		}
		return infos[i].Dir < infos[j].Dir
	})
	return infos, nil
}

func parsePackageDir(dir string) ([]*packageInfo, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedSyntax | packages.NeedFiles,
		Dir:  dir,
	}
	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, err
	}

	var infos []*packageInfo
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			if isSkippablePackageErrors(pkg.Errors) {
				log.Printf("quillgen: skipping %s (no buildable Go files for current tags)", dir)
				continue
			}
			return nil, fmt.Errorf("package load error in %s: %v", dir, pkg.Errors[0])
		}
		if pkg.Name == "" {
			continue
		}
		if strings.HasSuffix(pkg.Name, "_test") {
			continue
		}
		info := &packageInfo{Dir: dir, Name: pkg.Name}
		hasFormatArg := make(map[string]struct{})
		var candidates []structInfo
		for _, file := range pkg.Syntax {
			if isGeneratedOrTestFile(pkg, file) {
				continue
			}
			collectExistingFormatArg(file, hasFormatArg)
		}
		for _, file := range pkg.Syntax {
			if isGeneratedOrTestFile(pkg, file) {
				continue
			}
			ast.Inspect(file, func(n ast.Node) bool {
				ts, ok := n.(*ast.TypeSpec)
				if !ok {
					return true
				}
				st, ok := ts.Type.(*ast.StructType)
				if !ok {
					return false
				}
				if ts.TypeParams != nil && len(ts.TypeParams.List) > 0 {
					log.Printf("quillgen: skipping %s in %s (generic structs not supported)", ts.Name.Name, dir)
					return false
				}
				candidate, ok := buildStructInfo(ts.Name.Name, st)
				if !ok {
					return false
				}
				if _, exists := hasFormatArg[ts.Name.Name]; exists {
					log.Printf("quillgen: skipping %s in %s (FormatArg already defined)", ts.Name.Name, dir)
					return false
				}
				candidates = append(candidates, candidate)
				return false
			})
		}

		info.Structs = candidates
		sort.Slice(info.Structs, func(i, j int) bool {
			return info.Structs[i].Name < info.Structs[j].Name
		})
		infos = append(infos, info)
	}

	return infos, nil
}

func isGeneratedOrTestFile(pkg *packages.Package, file *ast.File) bool {
	if pkg.Fset == nil {
		return false
	}
	filename := pkg.Fset.Position(file.Pos()).Filename
	if filename == "" {
		return false
	}
	base := filepath.Base(filename)
	switch {
	case strings.HasSuffix(base, "_test.go"):
		return true
	case base == "quill_gen.go":
		return true
	default:
		return false
	}
}

func collectExistingFormatArg(file *ast.File, out map[string]struct{}) {
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || fd.Name.Name != "FormatArg" || len(fd.Recv.List) == 0 {
			continue
		}
		switch t := fd.Recv.List[0].Type.(type) {
		case *ast.Ident:
			out[t.Name] = struct{}{}
		case *ast.StarExpr:
			if ident, ok := t.X.(*ast.Ident); ok {
				out[ident.Name] = struct{}{}
			}
		}
	}
}

func isSkippablePackageErrors(errs []packages.Error) bool {
	if len(errs) == 0 {
		return false
	}
	for _, err := range errs {
		msg := strings.ToLower(err.Msg)
		if strings.Contains(msg, "build constraints exclude all go files") {
			continue
		}
		if strings.Contains(msg, "no go files") {
			continue
		}
		return false
	}
	return true
}

// buildStructInfo assembles the generated method's template literal from
// the struct's quill-tagged fields.
func buildStructInfo(name string, st *ast.StructType) (structInfo, bool) {
	var parts []string
	var args []string
	for _, field := range st.Fields.List {
		if field.Tag == nil || len(field.Names) == 0 {
			continue
		}
		tagValue, err := strconv.Unquote(field.Tag.Value)
		if err != nil {
			continue
		}
		tag := reflect.StructTag(tagValue)
		quillTag, ok := tag.Lookup("quill")
		if !ok {
			continue
		}
		label := strings.Split(quillTag, ",")[0]
		if label == "-" {
			continue
		}
		for _, fieldName := range field.Names {
			key := label
			if key == "" {
				key = fieldName.Name
			}
			parts = append(parts, key+": {}")
			args = append(args, "v."+fieldName.Name)
		}
	}
	if len(parts) == 0 {
		return structInfo{}, false
	}
	lit := name + "{{" + strings.Join(parts, ", ") + "}}"
	return structInfo{Name: name, FormatLit: strconv.Quote(lit), Args: args}, true
}

func shouldSkipDir(name string) bool {
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
		return true
	}
	switch name {
	case "vendor", "node_modules", "testdata":
		return true
	default:
		return false
	}
}

func generatePackage(info *packageInfo, moduleRoot, modulePath string) ([]byte, error) {
	moduleRoot = filepath.Clean(moduleRoot)
	info.Dir = filepath.Clean(info.Dir)

	isRootPackage := info.Dir == moduleRoot && modulePath == quillModulePath
	quillPrefix := "quill."
	imports := []string{`"fmt"`}
	if isRootPackage {
		quillPrefix = ""
	} else {
		imports = append(imports, fmt.Sprintf("%q", quillModulePath))
	}
	sort.Strings(imports)

	var buf bytes.Buffer
	tmpl, err := template.New("quill_gen").Parse(quillGenTemplate)
	if err != nil {
		return nil, err
	}
	if err := tmpl.Execute(&buf, templateData{
		PackageName: info.Name,
		Imports:     imports,
		Structs:     info.Structs,
		QuillPrefix: quillPrefix,
	}); err != nil {
		return nil, err
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return formatted, nil
}

type templateData struct {
	PackageName string
	Imports     []string
	Structs     []structInfo
	QuillPrefix string
}

func writeFileIfChanged(filePath string, data []byte) (bool, error) {
	existing, err := os.ReadFile(filePath)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func removeGeneratedFile(dir string) (bool, error) {
	filePath := filepath.Join(dir, "quill_gen.go")
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if !bytes.HasPrefix(data, []byte("// Code generated by quillgen; DO NOT EDIT.")) {
		return false, nil
	}
	if err := os.Remove(filePath); err != nil {
		return false, err
	}
	return true, nil
}

package cmd

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/repr"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/tools/go/packages"

	"github.com/vippsas/thorn/translate"
)

// inferPackageName asks go/packages for the name already declared by .go
// files in dir, mirroring goparser's use of golang.org/x/tools/go/packages
// to inspect a target directory rather than re-deriving it by string
// munging. Falls back to the directory's base name for a directory that
// has no Go files yet (a fresh generation target).
func inferPackageName(dir string) string {
	cfg := &packages.Config{Mode: packages.NeedName, Dir: dir}
	pkgs, err := packages.Load(cfg, ".")
	if err == nil && len(pkgs) == 1 && pkgs[0].Name != "" {
		return pkgs[0].Name
	}
	return filepath.Base(filepath.Clean(dir))
}

func generateFile(logger *logrus.Logger, pkg, path string) error {
	contentBytes, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "reading %s", path)
	}

	funcName, paramList, body := translate.ParseHeader(string(contentBytes))

	prog, err := translate.New(translate.FileRef(path), body).Translate()
	if err != nil {
		return errors.Wrapf(err, "translating %s", path)
	}

	if err := checkArities(filepath.Dir(path), prog); err != nil {
		return err
	}

	if dumpIR {
		logger.Infof("%s: func %s(%s)", path, funcName, paramList)
		repr.Println(prog)
		return nil
	}

	generated, err := translate.Generate(pkg, funcName, paramList, prog)
	if err != nil {
		return errors.Wrapf(err, "generating %s", path)
	}

	outPath := strings.TrimSuffix(path, filepath.Ext(path)) + "_thorn.go"
	if err := os.WriteFile(outPath, []byte(generated.Source), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", outPath)
	}
	logger.Infof("wrote %s (%d exported field(s))", outPath, len(generated.Fields))
	return nil
}

var (
	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Translate every .thorn file under --directory into a _thorn.go file alongside it",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				_ = cmd.Help()
				return errors.New("generate takes no positional arguments")
			}

			logger := logrus.StandardLogger()

			pkg := packageName
			if pkg == "" {
				pkg = inferPackageName(directory)
			}

			var paths []string
			err := filepath.Walk(directory, func(path string, info fs.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && strings.HasSuffix(info.Name(), ".thorn") {
					paths = append(paths, path)
				}
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "walking %s", directory)
			}

			if len(paths) == 0 {
				logger.Warnf("no .thorn files found under %s", directory)
				return nil
			}

			for _, path := range paths {
				if err := generateFile(logger, pkg, path); err != nil {
					return err
				}
			}
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(generateCmd)
}

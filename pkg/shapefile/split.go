package shapefile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"

	"github.com/Gismakerr/DaChuang/pkg/storage"
)

// crsSidecars are copied next to every split output so the projection survives.
var crsSidecars = []string{"prj", "cpg"}

// Split writes one shapefile per feature of input into outFolder and returns the
// written .shp paths. Files are named after idField when it is set and non-empty
// for that row, else "feature_<row>". Rows sharing an identifier overwrite each other.
func Split(input, outFolder, idField string) ([]string, error) {
	r, err := shp.Open(input)
	if err != nil {
		return nil, fmt.Errorf("failed to open shapefile %s: %w", input, err)
	}
	defer r.Close()

	if err := (&storage.Storage{}).EnsureDir(outFolder); err != nil {
		return nil, err
	}

	fields := r.Fields()
	idIndex := -1
	if idField != "" {
		for i, f := range fields {
			if f.String() == idField {
				idIndex = i
				break
			}
		}
	}

	stem := strings.TrimSuffix(input, filepath.Ext(input))
	var outputs []string
	for row := 0; r.Next(); row++ {
		_, shape := r.Shape()

		name := fmt.Sprintf("feature_%d", row)
		if idIndex >= 0 {
			if v := strings.Trim(r.ReadAttribute(row, idIndex), " \x00"); v != "" {
				name = safeName(v)
			}
		}
		outPath := filepath.Join(outFolder, name+".shp")

		if err := writeFeature(outPath, r.GeometryType, fields, shape, func(i int) string {
			return r.ReadAttribute(row, i)
		}); err != nil {
			return outputs, err
		}
		for _, ext := range crsSidecars {
			if err := copyIfExists(stem+"."+ext, filepath.Join(outFolder, name+"."+ext)); err != nil {
				return outputs, err
			}
		}
		outputs = append(outputs, outPath)
	}
	if err := r.Err(); err != nil {
		return outputs, fmt.Errorf("failed to read shapefile %s: %w", input, err)
	}
	return outputs, nil
}

func writeFeature(path string, geomType shp.ShapeType, fields []shp.Field, shape shp.Shape, attr func(int) string) error {
	w, err := shp.Create(path, geomType)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer w.Close()

	if len(fields) > 0 {
		if err := w.SetFields(fields); err != nil {
			return fmt.Errorf("failed to set fields on %s: %w", path, err)
		}
	}
	w.Write(shape)
	for i := range fields {
		if err := w.WriteAttribute(0, i, attr(i)); err != nil {
			return fmt.Errorf("failed to write attribute %s on %s: %w", fields[i].String(), path, err)
		}
	}
	return nil
}

// safeName keeps identifier values from escaping the output folder.
func safeName(v string) string {
	return strings.NewReplacer("/", "_", `\`, "_", "..", "_").Replace(v)
}

func copyIfExists(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(filepath.Clean(dst))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

package export

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

// ErrNothingSelected is returned when a bulk export selection matches no plasmid
var ErrNothingSelected = errors.New("nothing selected to export")

// Selection picks cells and plasmids, by id or name, for a bulk export. Empty
// lists select everything.
type Selection struct {
	Cells    []string
	Plasmids []string
}

func selected(keys []string, id, name string) bool {
	if len(keys) == 0 {
		return true
	}
	for _, k := range keys {
		if k == id || k == name {
			return true
		}
	}
	return false
}

// folder is a zip directory and the plasmids written into it
type folder struct {
	name     string
	plasmids []circuit.Plasmid
}

// folders groups the selected plasmids by cell. A file without cells is one folder
// named after the circuit.
func folders(f *circuit.File, sel Selection) ([]folder, error) {
	if len(f.Cells) == 0 {
		root := folder{name: f.Name}
		for _, p := range f.AllPlasmids() {
			if selected(sel.Plasmids, p.ID, p.Name) {
				root.plasmids = append(root.plasmids, p)
			}
		}
		return []folder{root}, nil
	}

	var out []folder
	for _, cell := range f.Cells {
		if !selected(sel.Cells, cell.ID, cell.Name) {
			continue
		}

		dir := folder{name: cell.Name}
		for _, id := range cell.PlasmidIDs {
			p, ok := f.Plasmid(id)
			if !ok {
				return nil, fmt.Errorf("failed to export cell %s: no plasmid %s", cell.Name, id)
			}
			if selected(sel.Plasmids, p.ID, p.Name) {
				dir.plasmids = append(dir.plasmids, p)
			}
		}
		out = append(out, dir)
	}
	return out, nil
}

// WriteZip writes one folder per selected cell holding one file per selected
// plasmid. Folder and file names are sanitized, repeats suffixed _2, _3...
func WriteZip(w io.Writer, f *circuit.File, sel Selection, format Format, opts Options) error {
	dirs, err := folders(f, sel)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	dirNames := uniqueNames{}
	count := 0
	for _, dir := range dirs {
		if len(dir.plasmids) == 0 {
			continue
		}

		dirName := dirNames.next(dir.name)
		fileNames := uniqueNames{}
		for _, p := range dir.plasmids {
			name := path.Join(dirName, fileNames.next(p.Name)+format.Ext())

			entry, err := zw.CreateHeader(&zip.FileHeader{
				Name:     name,
				Method:   zip.Deflate,
				Modified: opts.date(),
			})
			if err != nil {
				return fmt.Errorf("failed to add %s to zip: %w", name, err)
			}
			if err := Write(entry, FromPlasmid(p), format, opts); err != nil {
				return err
			}
			count++
		}
	}

	if count == 0 {
		return ErrNothingSelected
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finish zip: %w", err)
	}
	return nil
}

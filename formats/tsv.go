package formats

import (
	"strings"

	"github.com/bjaus/staged"
)

var tsvEscaper = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// tsvStages are the build stages of the inline "tsv" format. They run on a
// CSV handler, reusing its prepared view, and write tab-separated lines with
// embedded tabs and newlines flattened to spaces.
func tsvStages() map[string]staged.StageFunc {
	return map[string]staged.StageFunc{
		StageHeader: func(h staged.Handler) error {
			return writeTSVRow(h, h.(*CSVFormat).view.header)
		},
		StageBody: func(h staged.Handler) error {
			for _, cells := range h.(*CSVFormat).view.rows {
				if err := writeTSVRow(h, cells); err != nil {
					return err
				}
			}
			return nil
		},
		StageFooter: func(h staged.Handler) error {
			return writeTSVRow(h, h.(*CSVFormat).view.footer)
		},
	}
}

func writeTSVRow(h staged.Handler, cells []string) error {
	if len(cells) == 0 {
		return nil
	}
	escaped := make([]string, len(cells))
	for i, cell := range cells {
		escaped[i] = tsvEscaper.Replace(cell)
	}
	return h.Base().Println(strings.Join(escaped, "\t"))
}

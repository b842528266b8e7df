// Package export reads and writes the consolidated lead CSV: semicolon
// separated, UTF-8 with byte-order marker, pt-BR decimal commas. The format
// is the system boundary consumed by the dashboard and the sync stage, so
// every detail here is load-bearing.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/behonest/leads-cli/internal/extract"
	"github.com/behonest/leads-cli/internal/model"
)

const utf8BOM = "\xef\xbb\xbf"

const dateLayout = "02/01/2006"

// Header is the column set of the consolidated CSV, in order.
var Header = []string{
	"id",
	"data_criacao",
	"titulo",
	"nome",
	"email",
	"celular",
	"origem",
	"cidade",
	"estado",
	"etiquetas",
	"situacao",
	"motivo_perda",
	"valor_disponivel_para_investimento",
	"localizacao_index",
	"investimento_index",
	"tempo_index",
	"score_index",
	"classificacao_index",
}

// FormatDate renders a creation date as DD/MM/YYYY, or "" for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

// ParseDate parses a DD/MM/YYYY date. Unparseable input yields the zero
// time, which scores a recency index of 0 downstream.
func ParseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Write renders the lead set to w in the boundary format.
func Write(w io.Writer, leads []model.Lead) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return eris.Wrap(err, "export: write BOM")
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(Header); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for i := range leads {
		l := &leads[i]
		row := []string{
			strconv.FormatInt(l.ID, 10),
			FormatDate(l.CreatedAt),
			l.Title,
			l.Name,
			l.Email,
			l.Phone,
			l.Origin,
			l.City,
			l.State,
			l.Tags,
			l.Stage,
			l.LossReason,
			extract.FormatBRL(l.Investment),
			extract.FormatBRDecimal(l.LocationIndex),
			extract.FormatBRDecimal(l.InvestmentIndex),
			extract.FormatBRDecimal(l.RecencyIndex),
			extract.FormatBRDecimal(l.Score),
			l.Tier,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrapf(err, "export: write row for lead %d", l.ID)
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}

// WriteFile publishes the lead set atomically: the CSV is written to a
// temporary file in the destination directory and renamed over the target,
// so a failed run never clobbers the previous artifact.
func WriteFile(path string, leads []model.Lead) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return eris.Wrap(err, "export: create temp file")
	}
	tmpName := tmp.Name()

	if err := Write(tmp, leads); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return eris.Wrap(err, "export: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrap(err, "export: close temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrap(err, "export: publish")
	}

	zap.L().Info("export: csv published", zap.String("path", path), zap.Int("leads", len(leads)))
	return nil
}

// Read parses the boundary format back into leads. Rows without a numeric id
// are structural defects: skipped and logged, never fatal.
func Read(r io.Reader) ([]model.Lead, error) {
	br := &bomReader{r: r}

	cr := csv.NewReader(br)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "export: read header")
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}

	field := func(row []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var leads []model.Lead
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "export: read row")
		}

		id, err := strconv.ParseInt(field(row, "id"), 10, 64)
		if err != nil {
			zap.L().Warn("export: skipping row without numeric id",
				zap.String("id", field(row, "id")),
			)
			continue
		}

		leads = append(leads, model.Lead{
			ID:              id,
			CreatedAt:       ParseDate(field(row, "data_criacao")),
			Title:           field(row, "titulo"),
			Name:            field(row, "nome"),
			Email:           field(row, "email"),
			Phone:           field(row, "celular"),
			Origin:          field(row, "origem"),
			City:            field(row, "cidade"),
			State:           field(row, "estado"),
			Tags:            field(row, "etiquetas"),
			Stage:           field(row, "situacao"),
			LossReason:      field(row, "motivo_perda"),
			Investment:      extract.ParseBRL(field(row, "valor_disponivel_para_investimento")),
			LocationIndex:   extract.ParseBRDecimal(field(row, "localizacao_index")),
			InvestmentIndex: extract.ParseBRDecimal(field(row, "investimento_index")),
			RecencyIndex:    extract.ParseBRDecimal(field(row, "tempo_index")),
			Score:           extract.ParseBRDecimal(field(row, "score_index")),
			Tier:            field(row, "classificacao_index"),
		})
	}

	return leads, nil
}

// ReadFile loads the boundary CSV from disk.
func ReadFile(path string) ([]model.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	return Read(f)
}

// bomReader strips a leading UTF-8 byte-order marker.
type bomReader struct {
	r       io.Reader
	started bool
}

func (b *bomReader) Read(p []byte) (int, error) {
	if !b.started {
		b.started = true
		buf := make([]byte, 3)
		n, err := io.ReadFull(b.r, buf)
		if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
			return 0, err
		}
		rest := buf[:n]
		if string(rest) == utf8BOM {
			rest = nil
		}
		if len(rest) > 0 {
			b.r = io.MultiReader(strings.NewReader(string(rest)), b.r)
		}
	}
	return b.r.Read(p)
}

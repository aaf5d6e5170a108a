package export

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"botlynx/internal/report"

	"github.com/bytedance/sonic"
)

// EncodeJSON writes v as indented JSON followed by a newline.
func EncodeJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteJSON writes v to path, gzip-compressed when the path ends in .gz. Use it with a
// *report.Report or with report.NewNoData().
func WriteJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return EncodeJSON(f, v)
	}

	gz := gzip.NewWriter(f)
	if err := EncodeJSON(gz, v); err != nil {
		gz.Close()
		return err
	}
	return gz.Close()
}

// ReadJSON loads a report written by WriteJSON. A stored "no data" result yields
// report.ErrNoData.
func ReadJSON(path string) (*report.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var noData report.NoData
	if err := sonic.Unmarshal(data, &noData); err == nil && noData.Error == report.NoDataMessage {
		return nil, report.ErrNoData
	}

	var rep report.Report
	if err := sonic.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("invalid report %s: %w", path, err)
	}
	return &rep, nil
}

package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/hupe1980/genarena"
	"github.com/hupe1980/genarena/snapshot"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func ratio(h snapshot.Header) string {
	if h.StoredSize == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2fx", float64(h.RawSize)/float64(h.StoredSize))
}

func renderHeader(w io.Writer, h snapshot.Header) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRows([]table.Row{
		{"ID", h.ID},
		{"Format", h.Version},
		{"Codec", h.Codec},
		{"Compression", h.Compression},
		{"Slots", humanize.Comma(int64(h.Slots))},
		{"Live", humanize.Comma(int64(h.Live))},
		{"Raw size", humanize.IBytes(h.RawSize)},
		{"Stored size", humanize.IBytes(h.StoredSize)},
		{"Ratio", ratio(h)},
		{"CRC32", fmt.Sprintf("%08x", h.Checksum)},
	})
	t.Render()
}

func renderStats(w io.Writer, s genarena.Stats) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Occupied", "Free", "Retired", "Capacity"})
	t.AppendRow(table.Row{
		humanize.Comma(int64(s.Len)),
		humanize.Comma(int64(s.Free)),
		humanize.Comma(int64(s.Retired)),
		humanize.Comma(int64(s.Cap)),
	})
	t.Render()
}

func renderVersions(w io.Writer, infos []snapshot.Info, current uint64) {
	t := newTable(w)
	t.AppendHeader(table.Row{"", "Version", "Codec", "Compression", "Live", "Slots", "Size"})
	for _, info := range infos {
		mark := ""
		if info.Version == current {
			mark = "*"
		}
		t.AppendRow(table.Row{
			mark,
			info.Version,
			info.Header.Codec,
			info.Header.Compression,
			humanize.Comma(int64(info.Header.Live)),
			humanize.Comma(int64(info.Header.Slots)),
			humanize.IBytes(uint64(info.Size)), //nolint:gosec // blob sizes are non-negative
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d versions", len(infos))})
	t.Render()
}

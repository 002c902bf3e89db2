package monitor

import (
	"fmt"
	"strings"

	"rdtmon/internal/events"
)

// Format selects the output record shape.
type Format int

const (
	FormatText Format = iota
	FormatXML
	FormatCSV
)

// ParseFormat maps a case-insensitive CLI value onto a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "text":
		return FormatText, nil
	case "xml":
		return FormatXML, nil
	case "csv":
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("invalid selection of output file type %q", s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatCSV:
		return "csv"
	default:
		return "text"
	}
}

const (
	xmlDeclaration = "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n"
	xmlRootOpen    = "<records>"
	xmlRootClose   = "</records>"

	// timeLayout is the frame timestamp shape shared by all formats.
	timeLayout = "2006-01-02 15:04:05"

	// textBlank fills an active column on a row that does not monitor
	// the event. Same width as the formatted value.
	textBlank = "           "
)

// textColumn renders one fixed-width numeric cell. The cell is present
// only when the event's column is active anywhere in the run; it holds
// a value only when this row's own mask includes the event.
func textColumn(val float64, monitored, present bool) string {
	if monitored {
		return fmt.Sprintf("%11.1f", val)
	}
	if present {
		return textBlank
	}
	return ""
}

// textCells renders the per-event columns in fixed order: occupancy,
// local bandwidth, remote bandwidth.
func textCells(mask, display events.Mask, llc, mbr, mbl float64) string {
	var b strings.Builder
	b.WriteString(textColumn(llc, mask.Has(events.Occupancy), display.Has(events.Occupancy)))
	b.WriteString(textColumn(mbl, mask.Has(events.LocalBandwidth), display.Has(events.LocalBandwidth)))
	b.WriteString(textColumn(mbr, mask.Has(events.RemoteBandwidth), display.Has(events.RemoteBandwidth)))
	return b.String()
}

func xmlColumn(val float64, monitored, present bool, node string) string {
	if monitored {
		return fmt.Sprintf("\t<%s>%.1f</%s>\n", node, val, node)
	}
	if present {
		return fmt.Sprintf("\t<%s></%s>\n", node, node)
	}
	return ""
}

func xmlCells(mask, display events.Mask, llc, mbr, mbl float64) string {
	var b strings.Builder
	b.WriteString(xmlColumn(llc, mask.Has(events.Occupancy), display.Has(events.Occupancy), "l3_occupancy_kB"))
	b.WriteString(xmlColumn(mbl, mask.Has(events.LocalBandwidth), display.Has(events.LocalBandwidth), "mbm_local_MB"))
	b.WriteString(xmlColumn(mbr, mask.Has(events.RemoteBandwidth), display.Has(events.RemoteBandwidth), "mbm_remote_MB"))
	return b.String()
}

func csvColumn(val float64, monitored, present bool) string {
	if monitored {
		return fmt.Sprintf(",%.1f", val)
	}
	if present {
		return ","
	}
	return ""
}

func csvCells(mask, display events.Mask, llc, mbr, mbl float64) string {
	var b strings.Builder
	b.WriteString(csvColumn(llc, mask.Has(events.Occupancy), display.Has(events.Occupancy)))
	b.WriteString(csvColumn(mbl, mask.Has(events.LocalBandwidth), display.Has(events.LocalBandwidth)))
	b.WriteString(csvColumn(mbr, mask.Has(events.RemoteBandwidth), display.Has(events.RemoteBandwidth)))
	return b.String()
}

// TextHeader builds the text table header for the active columns.
func TextHeader(processMode bool, display events.Mask) string {
	var b strings.Builder
	if processMode {
		b.WriteString("PID      CORE     RMID")
	} else {
		b.WriteString("SKT     CORE     RMID")
	}
	if display.Has(events.Occupancy) {
		b.WriteString("    LLC[KB]")
	}
	if display.Has(events.LocalBandwidth) {
		b.WriteString("  MBL[MB/s]")
	}
	if display.Has(events.RemoteBandwidth) {
		b.WriteString("  MBR[MB/s]")
	}
	return b.String()
}

// CSVHeader builds the CSV header line for the active columns.
func CSVHeader(processMode bool, display events.Mask) string {
	var b strings.Builder
	if processMode {
		b.WriteString("Time,PID,Core,RMID")
	} else {
		b.WriteString("Time,Socket,Core,RMID")
	}
	if display.Has(events.Occupancy) {
		b.WriteString(",LLC[KB]")
	}
	if display.Has(events.LocalBandwidth) {
		b.WriteString(",MBL[MB/s]")
	}
	if display.Has(events.RemoteBandwidth) {
		b.WriteString(",MBR[MB/s]")
	}
	return b.String()
}

// TextRow renders one target's text table row, leading newline
// included.
func TextRow(t *Target, display events.Mask, llc, mbr, mbl float64) string {
	cells := textCells(t.Events, display, llc, mbr, mbl)
	if t.Process() {
		return fmt.Sprintf("\n%6d %6s %8s%s", t.PID, "N/A", "N/A", cells)
	}
	return fmt.Sprintf("\n%3d %8.8s %8d%s", t.Session.Socket, t.Desc, t.Session.RMID, cells)
}

// XMLRow renders one target's <record> element.
func XMLRow(t *Target, timeStr string, display events.Mask, llc, mbr, mbl float64) string {
	cells := xmlCells(t.Events, display, llc, mbr, mbl)
	if t.Process() {
		return fmt.Sprintf("<record>\n\t<time>%s</time>\n\t<pid>%d</pid>\n\t<core>%s</core>\n\t<rmid>%s</rmid>\n%s</record>\n",
			timeStr, t.PID, "N/A", "N/A", cells)
	}
	return fmt.Sprintf("<record>\n\t<time>%s</time>\n\t<socket>%d</socket>\n\t<core>%s</core>\n\t<rmid>%d</rmid>\n%s</record>\n",
		timeStr, t.Session.Socket, t.Desc, t.Session.RMID, cells)
}

// CSVRow renders one target's CSV data line.
func CSVRow(t *Target, timeStr string, display events.Mask, llc, mbr, mbl float64) string {
	cells := csvCells(t.Events, display, llc, mbr, mbl)
	if t.Process() {
		return fmt.Sprintf("%s,%d,%s,%s%s\n", timeStr, t.PID, "N/A", "N/A", cells)
	}
	return fmt.Sprintf("%s,%d,%s,%d%s\n", timeStr, t.Session.Socket, t.Desc, t.Session.RMID, cells)
}

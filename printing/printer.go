package printing

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/restaurant-floor/utils"
)

// Printer puts one ticket on paper (or wherever). Implementations must honour
// ctx cancellation.
type Printer interface {
	Print(ctx context.Context, t Ticket) error
}

// LogPrinter writes tickets to the info log. Used when no device is configured.
type LogPrinter struct{}

func (LogPrinter) Print(_ context.Context, t Ticket) error {
	utils.InfoLogger.WithFields(logrus.Fields{
		"station":  t.Station,
		"event":    t.Event,
		"order_id": t.OrderID,
		"table":    t.TableNumber,
	}).Info("ticket\n" + t.Text)
	return nil
}

// ESC/POS control sequences.
var (
	escInit = []byte{0x1b, 0x40}
	escCut  = []byte{0x1d, 0x56, 0x41, 0x03}
)

// TCPPrinter sends raw ESC/POS text to a network thermal printer, usually on port 9100.
type TCPPrinter struct {
	Addr    string
	Timeout time.Duration
}

func NewTCPPrinter(addr string) *TCPPrinter {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "9100")
	}
	return &TCPPrinter{Addr: addr, Timeout: 5 * time.Second}
}

func (p *TCPPrinter) Print(ctx context.Context, t Ticket) error {
	dialer := net.Dialer{Timeout: p.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", p.Addr)
	if err != nil {
		return fmt.Errorf("dial printer %s: %w", p.Addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(p.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return err
	}

	payload := make([]byte, 0, len(t.Text)+16)
	payload = append(payload, escInit...)
	payload = append(payload, t.Text...)
	payload = append(payload, "\n\n\n"...)
	payload = append(payload, escCut...)
	if _, err := conn.Write(payload); err != nil {
		return fmt.Errorf("write to printer %s: %w", p.Addr, err)
	}
	return nil
}

// PDFPrinter renders tickets as 80mm-wide PDF files in Dir.
type PDFPrinter struct {
	Dir string
}

func NewPDFPrinter(dir string) (*PDFPrinter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create receipt dir: %w", err)
	}
	return &PDFPrinter{Dir: dir}, nil
}

func (p *PDFPrinter) Print(ctx context.Context, t Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 200},
	})
	pdf.SetMargins(4, 6, 4)
	pdf.SetAutoPageBreak(true, 6)
	pdf.SetTitle(t.Title, true)
	pdf.AddPage()
	pdf.SetFont("Courier", "", 9)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, line := range strings.Split(strings.TrimRight(t.Text, "\n"), "\n") {
		pdf.MultiCell(0, 4, tr(line), "", "L", false)
	}

	path := filepath.Join(p.Dir, p.FileName(t))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	utils.InfoLogger.WithFields(logrus.Fields{"order_id": t.OrderID, "file": path}).Info("ticket saved as pdf")
	return nil
}

func (p *PDFPrinter) FileName(t Ticket) string {
	return fmt.Sprintf("%s-%s-%s.pdf", t.Station, t.OrderID, t.CreatedAt.Format("20060102-150405.000"))
}

// StationRouter sends each ticket to the printer of its station, or to Fallback.
type StationRouter struct {
	Routes   map[Station]Printer
	Fallback Printer
}

func (r StationRouter) Print(ctx context.Context, t Ticket) error {
	if p, ok := r.Routes[t.Station]; ok && p != nil {
		return p.Print(ctx, t)
	}
	if r.Fallback != nil {
		return r.Fallback.Print(ctx, t)
	}
	return fmt.Errorf("no printer for station %s", t.Station)
}

package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/muurk/customers/internal/api"
	"github.com/muurk/customers/internal/discovery"
)

// Printer writes styled command output. Falls back to MaxContentWidth
// when the writer is not a terminal.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{
		out:   w,
		width: GetTerminalWidth(w),
	}
}

// Width returns the width used for rendering
func (p *Printer) Width() int {
	return p.width
}

// Print writes content to the output
func (p *Printer) Print(content string) {
	_, _ = fmt.Fprint(p.out, content)
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintCustomers prints list in the requested format
func (p *Printer) PrintCustomers(list api.CustomerList, format Format) error {
	if format == FormatJSON {
		if list == nil {
			list = api.CustomerList{}
		}
		return WriteJSON(p.out, list)
	}
	p.Println(RenderCustomers(list, p.width))
	return nil
}

// PrintServices prints discovered services in the requested format
func (p *Printer) PrintServices(services []discovery.Service, format Format) error {
	if format == FormatJSON {
		if services == nil {
			services = []discovery.Service{}
		}
		return WriteJSON(p.out, services)
	}
	if len(services) == 0 {
		p.PrintResult(NewWarningResult("No customers APIs found on the local network",
			Detail{Key: "Service type", Value: discovery.ServiceType + "." + discovery.ServiceDomain},
			Detail{Key: "Hint", Value: "start one with customers-mock serve --advertise"},
		))
		return nil
	}
	p.Println(RenderServices(services))
	return nil
}

// PrintResult prints a result box sized to the printer
func (p *Printer) PrintResult(r *Result) {
	p.Println(r.SetWidth(p.width).Render())
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Detail) {
	p.PrintResult(NewSuccessResult(title, details...))
}

// PrintError prints a failure result box with troubleshooting hints
func (p *Printer) PrintError(title string, err error) {
	p.PrintResult(NewFailureResult(title, err))
}

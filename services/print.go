package services

import (
	"bytes"
	"fmt"
	"io"

	"PrescriptionPad/models"
	"PrescriptionPad/templates"
)

const (
	PRINT_WINDOW_WIDTH  = 600
	PRINT_WINDOW_HEIGHT = 800
)

type PrintDocument struct {
	Prescription models.Prescription
	Code         *VisualCode
	Width        int
	Height       int
}

func NewPrintDocument(p models.Prescription, code *VisualCode) PrintDocument {
	return PrintDocument{
		Prescription: p,
		Code:         code,
		Width:        PRINT_WINDOW_WIDTH,
		Height:       PRINT_WINDOW_HEIGHT,
	}
}

/*
* Execute the print template into a buffer first
* so a template failure never leaves a half written page
 */
func WritePrintView(w io.Writer, doc PrintDocument) error {
	var buf bytes.Buffer
	if err := templates.Print().Execute(&buf, doc); err != nil {
		return fmt.Errorf("print template execute error: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

package services

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"image/color"
	"strings"

	"PrescriptionPad/models"

	qrcode "github.com/skip2/go-qrcode"
)

// VisualCode is a rendered code image together with the text it encodes.
type VisualCode struct {
	Text string
	PNG  []byte
}

func (v VisualCode) DataURI() template.URL {
	return template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(v.PNG))
}

type CodeRenderer interface {
	Render(text string) (VisualCode, error)
}

type QRRenderer struct {
	Size       int
	Foreground color.Color
	Background color.Color
	Level      qrcode.RecoveryLevel
}

// NewQRRenderer draws 120px codes in #2563eb on white with high error correction.
func NewQRRenderer() *QRRenderer {
	return &QRRenderer{
		Size:       120,
		Foreground: color.RGBA{R: 0x25, G: 0x63, B: 0xeb, A: 0xff},
		Background: color.White,
		Level:      qrcode.High,
	}
}

func (r *QRRenderer) Render(text string) (VisualCode, error) {
	q, err := qrcode.New(text, r.Level)
	if err != nil {
		return VisualCode{}, fmt.Errorf("encode visual code: %w", err)
	}
	q.ForegroundColor = r.Foreground
	q.BackgroundColor = r.Background
	png, err := q.PNG(r.Size)
	if err != nil {
		return VisualCode{}, fmt.Errorf("render visual code: %w", err)
	}
	return VisualCode{Text: text, PNG: png}, nil
}

/*
* Build the text block encoded in every visual code
* One line each for doctor, patient and notes, then one line per medicine
 */
func CodeText(p models.Prescription) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Doctor: %s\n", p.Doctor)
	fmt.Fprintf(&b, "Patient: %s\n", p.Patient)
	fmt.Fprintf(&b, "Notes: %s\n", p.Notes)
	b.WriteString("Medications:")
	for _, m := range p.Meds {
		b.WriteString("\n")
		b.WriteString(m.Line())
	}
	return b.String()
}

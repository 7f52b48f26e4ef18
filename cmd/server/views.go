package main

import (
	"bytes"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"github.com/kewo/kewo-rechner/internal/calculator"
	"github.com/kewo/kewo-rechner/web"
)

type baseViewData struct {
	ErrorMessage   string
	SuccessMessage string
}

type calculatorViewData struct {
	baseViewData
	Inputs  calculator.Inputs
	Display map[string]string
}

func newCalculatorViewData(in calculator.Inputs) calculatorViewData {
	return calculatorViewData{
		Inputs:  in,
		Display: calculator.Compute(in).Display(),
	}
}

type inputView struct {
	Field string
	Label string
	Value string
}

// Input describes one number input bound to an Inputs field.
func (d calculatorViewData) Input(field, label string) inputView {
	return inputView{
		Field: field,
		Label: label,
		Value: d.Inputs.Get(calculator.Field(field)),
	}
}

type comparisonRowView struct {
	Key   string
	Label string
}

type comparisonView struct {
	Prefix  string
	Display map[string]string
	Rows    []comparisonRowView
}

var comparisonRows = []comparisonRowView{
	{Key: "electricity", Label: "Strom"},
	{Key: "heating", Label: "Heizung"},
	{Key: "self_consumption", Label: "Eigenverbrauch"},
	{Key: "total", Label: "Gesamt"},
}

// Comparison binds a comparison table to the display keys under prefix,
// e.g. "comparison.monthly".
func (d calculatorViewData) Comparison(prefix string) comparisonView {
	return comparisonView{Prefix: prefix, Display: d.Display, Rows: comparisonRows}
}

// DurationLabel is the contract duration shown in the advantage header.
func (d calculatorViewData) DurationLabel() string {
	if d.Inputs.DurationYears != "" {
		return d.Inputs.DurationYears
	}
	return "0"
}

func (s *server) renderTemplate(w http.ResponseWriter, status int, page string, data any) {
	templates, err := template.ParseFS(web.Templates, "templates/layout.html", "templates/"+page)
	if err != nil {
		s.logger.Error("parse template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to parse template", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		s.logger.Error("render template", zap.String("page", page), zap.Error(err))
		http.Error(w, "failed to render template", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Package templates holds the outbound SMS bodies and inbound auto-replies.
// Defaults are embedded; an optional YAML file may override any entry.
package templates

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"go.yaml.in/yaml/v3"
)

//go:embed messages.default.yaml
var defaultMessages []byte

// Replies are the fixed texts returned to inbound SMS senders.
type Replies struct {
	Malformed       string `yaml:"malformed"`
	OptedOut        string `yaml:"opted_out"`
	PickupConfirmed string `yaml:"pickup_confirmed"`
	DonateConfirmed string `yaml:"donate_confirmed"`
	NotFound        string `yaml:"not_found"`
	Unrecognized    string `yaml:"unrecognized"`
	InternalError   string `yaml:"internal_error"`
}

type catalogFile struct {
	OrderReady string  `yaml:"order_ready"`
	Reminder   string  `yaml:"reminder"`
	Receipt    string  `yaml:"receipt"`
	Replies    Replies `yaml:"replies"`
}

// MessageData feeds the outbound templates.
type MessageData struct {
	Name              string
	OrderNumber       string
	Date              string
	InitialPickupDate string
	SurveyLink        string
	Details           string
}

type Catalog struct {
	Replies    Replies
	orderReady *template.Template
	reminder   *template.Template
	receipt    *template.Template
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("embedded message catalog is invalid: %v", err))
	}
	return c
}

// Load parses the embedded defaults and, when overridePath is set, overlays that file.
func Load(overridePath string) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(defaultMessages, &f); err != nil {
		return nil, fmt.Errorf("parsing default messages: %w", err)
	}
	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("reading message overrides: %w", err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parsing message overrides %s: %w", overridePath, err)
		}
	}
	return compile(f)
}

func compile(f catalogFile) (*Catalog, error) {
	c := &Catalog{Replies: f.Replies}
	var err error
	if c.orderReady, err = parse("order_ready", f.OrderReady); err != nil {
		return nil, err
	}
	if c.reminder, err = parse("reminder", f.Reminder); err != nil {
		return nil, err
	}
	if c.receipt, err = parse("receipt", f.Receipt); err != nil {
		return nil, err
	}
	// Surface references to unknown fields at load time instead of on the first send.
	for _, t := range []*template.Template{c.orderReady, c.reminder, c.receipt} {
		if err := t.Execute(&strings.Builder{}, MessageData{}); err != nil {
			return nil, fmt.Errorf("template %s: %w", t.Name(), err)
		}
	}
	return c, nil
}

func parse(name, body string) (*template.Template, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("template %s is empty", name)
	}
	t, err := template.New(name).Option("missingkey=error").Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return t, nil
}

func render(t *template.Template, data MessageData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", t.Name(), err)
	}
	return b.String(), nil
}

func (c *Catalog) OrderReady(data MessageData) (string, error) { return render(c.orderReady, data) }
func (c *Catalog) Reminder(data MessageData) (string, error)   { return render(c.reminder, data) }
func (c *Catalog) Receipt(data MessageData) (string, error)    { return render(c.receipt, data) }

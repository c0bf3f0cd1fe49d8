package notion

import "time"

// Database is the subset of the database object the importer consults.
type Database struct {
	ID         string                        `json:"id"`
	Properties map[string]PropertyDescriptor `json:"properties"`
}

// PropertyDescriptor describes one database property. Only presence and the
// type tag are used; property configuration is not inspected.
type PropertyDescriptor struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// Page is the subset of the created page object returned to callers.
type Page struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// Properties maps property names onto typed values for page creation.
type Properties map[string]PropertyValue

// PropertyValue is a union of the property payload shapes the importer emits.
// Exactly one member is set per value.
type PropertyValue struct {
	Title       []RichText     `json:"title,omitempty"`
	RichText    []RichText     `json:"rich_text,omitempty"`
	URL         string         `json:"url,omitempty"`
	Select      *SelectOption  `json:"select,omitempty"`
	MultiSelect []SelectOption `json:"multi_select,omitempty"`
	Date        *DateValue     `json:"date,omitempty"`
}

// RichText is a single text fragment.
type RichText struct {
	Text TextContent `json:"text"`
}

// TextContent carries the literal content of a rich text fragment.
type TextContent struct {
	Content string `json:"content"`
}

// SelectOption names a select or multi-select option.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue carries an ISO-8601 date property start value.
type DateValue struct {
	Start string `json:"start"`
}

// NewTitle builds a title property value.
func NewTitle(content string) PropertyValue {
	return PropertyValue{Title: []RichText{{Text: TextContent{Content: content}}}}
}

// NewRichText builds a rich text property value.
func NewRichText(content string) PropertyValue {
	return PropertyValue{RichText: []RichText{{Text: TextContent{Content: content}}}}
}

// NewURL builds a URL property value.
func NewURL(u string) PropertyValue {
	return PropertyValue{URL: u}
}

// NewSelect builds a select property value.
func NewSelect(name string) PropertyValue {
	return PropertyValue{Select: &SelectOption{Name: name}}
}

// NewMultiSelect builds a multi-select property value preserving option order.
func NewMultiSelect(names []string) PropertyValue {
	options := make([]SelectOption, 0, len(names))
	for _, name := range names {
		options = append(options, SelectOption{Name: name})
	}
	return PropertyValue{MultiSelect: options}
}

// NewDate builds a date property value from the given time.
func NewDate(t time.Time) PropertyValue {
	return PropertyValue{Date: &DateValue{Start: t.Format(time.RFC3339)}}
}

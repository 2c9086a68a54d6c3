package catalog

import (
	"bytes"
	"encoding/json"
	"sort"
)

const (
	// ItemTypeBlock is the item type written for generated blocks.
	ItemTypeBlock = "block"

	workflowPositionsKeyConstant   = "positions"
	workflowSizesKeyConstant       = "sizes"
	workflowConnectionsKeyConstant = "connections"
	itemTypeKeyConstant            = "type"
	itemIdentifierKeyConstant      = "id"
	itemTitleKeyConstant           = "title"
	itemContentKeyConstant         = "content"
)

// Item is a single titled text block inside a tab. Fields the catalog does not
// interpret are kept in Extra and written back unchanged.
type Item struct {
	Type    string         `mapstructure:"type"`
	ID      string         `mapstructure:"id"`
	Title   string         `mapstructure:"title"`
	Content string         `mapstructure:"content"`
	Extra   map[string]any `mapstructure:",remain"`
}

// Workflow holds layout data for a tab. It is opaque to the catalog.
type Workflow map[string]any

// Tab is the flat in-memory representation of a tab document. Extra carries
// tab-level fields the catalog does not interpret.
type Tab struct {
	ID       string
	Name     string
	Order    int
	Version  string
	Items    []Item
	Workflow Workflow
	Extra    map[string]any
}

// DefaultWorkflow returns the empty layout used when a document carries none.
func DefaultWorkflow() Workflow {
	return Workflow{
		workflowPositionsKeyConstant:   map[string]any{},
		workflowSizesKeyConstant:       map[string]any{},
		workflowConnectionsKeyConstant: []any{},
	}
}

// NewBlock constructs a block item with the provided identifier.
func NewBlock(identifier string, title string, content string) Item {
	return Item{Type: ItemTypeBlock, ID: identifier, Title: title, Content: content}
}

// Summary projects the tab onto its manifest entry.
func (tab Tab) Summary() ManifestEntry {
	return ManifestEntry{Name: tab.Name, Version: tab.Version, Order: tab.Order}
}

// MarshalJSON writes the known fields first and the passthrough fields after them in key order.
func (item Item) MarshalJSON() ([]byte, error) {
	return encodeOrderedObject([]objectField{
		{key: itemTypeKeyConstant, value: item.Type},
		{key: itemIdentifierKeyConstant, value: item.ID},
		{key: itemTitleKeyConstant, value: item.Title},
		{key: itemContentKeyConstant, value: item.Content},
	}, item.Extra)
}

type objectField struct {
	key   string
	value any
}

// encodeOrderedObject renders known fields in order, then every extra key not already written, sorted.
func encodeOrderedObject(known []objectField, extra map[string]any) ([]byte, error) {
	written := make(map[string]struct{}, len(known))
	for _, field := range known {
		written[field.key] = struct{}{}
	}
	extraKeys := make([]string, 0, len(extra))
	for extraKey := range extra {
		if _, duplicate := written[extraKey]; duplicate {
			continue
		}
		extraKeys = append(extraKeys, extraKey)
	}
	sort.Strings(extraKeys)

	fields := known
	for _, extraKey := range extraKeys {
		fields = append(fields, objectField{key: extraKey, value: extra[extraKey]})
	}

	buffer := &bytes.Buffer{}
	buffer.WriteByte('{')
	for fieldIndex, field := range fields {
		if fieldIndex > 0 {
			buffer.WriteByte(',')
		}
		encodedKey, keyError := marshalWithoutEscaping(field.key)
		if keyError != nil {
			return nil, keyError
		}
		encodedValue, valueError := marshalWithoutEscaping(field.value)
		if valueError != nil {
			return nil, valueError
		}
		buffer.Write(encodedKey)
		buffer.WriteByte(':')
		buffer.Write(encodedValue)
	}
	buffer.WriteByte('}')
	return buffer.Bytes(), nil
}

func marshalWithoutEscaping(value any) ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return nil, encodeError
	}
	return bytes.TrimRight(buffer.Bytes(), "\n"), nil
}

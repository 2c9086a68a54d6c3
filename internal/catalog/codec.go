package catalog

import (
	"bytes"
	"encoding/json"

	"github.com/go-viper/mapstructure/v2"
)

const (
	nestedTabKeyConstant         = "tab"
	workflowKeyConstant          = "workflow"
	idKeyConstant                = "id"
	nameKeyConstant              = "name"
	orderKeyConstant             = "order"
	versionKeyConstant           = "version"
	itemsKeyConstant             = "items"
	defaultTabOrderConstant      = 1
	jsonIndentConstant           = "  "
	malformedJSONMessageConstant = "malformed JSON"
	nestedTabNotObjectMessage    = "must be an object"
	tabFieldsUndecodableMessage  = "tab fields could not be decoded"
	missingFieldMessageConstant  = "is required"
	manifestUndecodableMessage   = "manifest could not be decoded"
)

// DocumentShape names the on-disk layout a tab document was read from.
type DocumentShape string

// Supported document shapes.
const (
	ShapeNested DocumentShape = DocumentShape("nested")
	ShapeFlat   DocumentShape = DocumentShape("flat")
)

// DecodedDocument is a tab document normalized to the flat in-memory shape.
type DecodedDocument struct {
	Tab      Tab
	Shape    DocumentShape
	HasName  bool
	HasItems bool
}

type tabRecord struct {
	ID      string         `mapstructure:"id"`
	Name    string         `mapstructure:"name"`
	Order   int            `mapstructure:"order"`
	Version string         `mapstructure:"version"`
	Items   []Item         `mapstructure:"items"`
	Extra   map[string]any `mapstructure:",remain"`
}

type canonicalTabRecord struct {
	ID      string
	Name    string
	Order   int
	Version string
	Items   []Item
	Extra   map[string]any
}

func (record canonicalTabRecord) MarshalJSON() ([]byte, error) {
	return encodeOrderedObject([]objectField{
		{key: idKeyConstant, value: record.ID},
		{key: nameKeyConstant, value: record.Name},
		{key: orderKeyConstant, value: record.Order},
		{key: versionKeyConstant, value: record.Version},
		{key: itemsKeyConstant, value: record.Items},
	}, record.Extra)
}

type canonicalDocument struct {
	Tab      canonicalTabRecord `json:"tab"`
	Workflow Workflow           `json:"workflow"`
}

// DecodeTabDocument normalizes either supported shape into a Tab. fallbackID is
// used when the payload carries no identifier of its own.
func DecodeTabDocument(data []byte, fallbackID string) (DecodedDocument, error) {
	rawDocument := map[string]any{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if decodeError := decoder.Decode(&rawDocument); decodeError != nil {
		return DecodedDocument{}, FormatError{Message: malformedJSONMessageConstant, Cause: decodeError}
	}

	shape := ShapeFlat
	tabFields := rawDocument
	if nestedValue, nested := rawDocument[nestedTabKeyConstant]; nested {
		nestedFields, isObject := nestedValue.(map[string]any)
		if !isObject {
			return DecodedDocument{}, FormatError{Field: nestedTabKeyConstant, Message: nestedTabNotObjectMessage}
		}
		shape = ShapeNested
		tabFields = nestedFields
	}

	record := tabRecord{}
	recordDecoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &record,
		WeaklyTypedInput: true,
	})
	if decoderError != nil {
		return DecodedDocument{}, decoderError
	}
	if decodeError := recordDecoder.Decode(tabFields); decodeError != nil {
		return DecodedDocument{}, FormatError{Message: tabFieldsUndecodableMessage, Cause: decodeError}
	}

	_, hasName := tabFields[nameKeyConstant]
	_, hasItems := tabFields[itemsKeyConstant]

	return DecodedDocument{
		Tab:      normalizeRecord(record, rawDocument[workflowKeyConstant], fallbackID),
		Shape:    shape,
		HasName:  hasName,
		HasItems: hasItems,
	}, nil
}

// ValidateImport rejects documents that lack a display name or a block list.
func (document DecodedDocument) ValidateImport() error {
	if !document.HasName {
		return FormatError{Field: nameKeyConstant, Message: missingFieldMessageConstant}
	}
	if !document.HasItems {
		return FormatError{Field: itemsKeyConstant, Message: missingFieldMessageConstant}
	}
	return nil
}

// EncodeTabDocument renders the canonical nested shape.
func EncodeTabDocument(tab Tab) ([]byte, error) {
	items := tab.Items
	if items == nil {
		items = []Item{}
	}
	workflow := tab.Workflow
	if workflow == nil {
		workflow = DefaultWorkflow()
	}

	return encodeIndented(canonicalDocument{
		Tab: canonicalTabRecord{
			ID:      tab.ID,
			Name:    tab.Name,
			Order:   tab.Order,
			Version: tab.Version,
			Items:   items,
			Extra:   tab.Extra,
		},
		Workflow: workflow,
	})
}

// EncodeManifest renders the manifest file content.
func EncodeManifest(manifest Manifest) ([]byte, error) {
	if manifest.Tabs == nil {
		manifest.Tabs = map[string]ManifestEntry{}
	}
	return encodeIndented(manifest)
}

// DecodeManifest parses manifest file content.
func DecodeManifest(data []byte) (Manifest, error) {
	manifest := Manifest{}
	if decodeError := json.Unmarshal(data, &manifest); decodeError != nil {
		return Manifest{}, FormatError{Message: manifestUndecodableMessage, Cause: decodeError}
	}
	if manifest.Tabs == nil {
		manifest.Tabs = map[string]ManifestEntry{}
	}
	return manifest, nil
}

func normalizeRecord(record tabRecord, workflowValue any, fallbackID string) Tab {
	identifier := record.ID
	if len(identifier) == 0 {
		identifier = fallbackID
	}

	displayName := record.Name
	if len(displayName) == 0 {
		displayName = CanonicalName(identifier)
	}

	order := record.Order
	if order == 0 {
		order = defaultTabOrderConstant
	}

	items := record.Items
	if items == nil {
		items = []Item{}
	}

	workflow := DefaultWorkflow()
	if workflowFields, isObject := workflowValue.(map[string]any); isObject {
		workflow = Workflow(workflowFields)
	}

	return Tab{
		ID:       identifier,
		Name:     displayName,
		Order:    order,
		Version:  NormalizeVersion(record.Version),
		Items:    items,
		Workflow: workflow,
		Extra:    tabLevelExtra(record.Extra),
	}
}

// tabLevelExtra drops the document-level keys a flat document shares with its tab fields.
func tabLevelExtra(extra map[string]any) map[string]any {
	delete(extra, workflowKeyConstant)
	delete(extra, nestedTabKeyConstant)
	if len(extra) == 0 {
		return nil
	}
	return extra
}

func encodeIndented(value any) ([]byte, error) {
	buffer := &bytes.Buffer{}
	encoder := json.NewEncoder(buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", jsonIndentConstant)
	if encodeError := encoder.Encode(value); encodeError != nil {
		return nil, encodeError
	}
	return buffer.Bytes(), nil
}

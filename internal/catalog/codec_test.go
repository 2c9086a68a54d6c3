package catalog_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/internal/catalog"
)

const (
	testNestedDocumentConstant = `{
  "version": 2,
  "exportDate": "2025-01-01T00:00:00Z",
  "tab": {
    "id": "alpha",
    "name": "Alpha",
    "order": 2,
    "version": "1.2.3",
    "items": [
      {"type": "block", "id": "item_1_abcdefghi", "title": "t", "content": "<b>c</b>", "collapsed": true, "scripts": ["a"]}
    ]
  },
  "workflow": {"positions": {"item_1_abcdefghi": {"x": 10, "y": 20}}, "sizes": {}, "connections": []}
}`
	testFlatDocumentConstant = `{
  "id": "alpha",
  "name": "Alpha",
  "order": 2,
  "version": "1.2.3",
  "items": [
    {"type": "block", "id": "item_1_abcdefghi", "title": "t", "content": "<b>c</b>", "collapsed": true, "scripts": ["a"]}
  ],
  "workflow": {"positions": {"item_1_abcdefghi": {"x": 10, "y": 20}}, "sizes": {}, "connections": []}
}`
)

func TestDecodeTabDocumentShapeInvariance(testInstance *testing.T) {
	nestedDocument, nestedError := catalog.DecodeTabDocument([]byte(testNestedDocumentConstant), "fallback")
	require.NoError(testInstance, nestedError)
	require.Equal(testInstance, catalog.ShapeNested, nestedDocument.Shape)

	flatDocument, flatError := catalog.DecodeTabDocument([]byte(testFlatDocumentConstant), "fallback")
	require.NoError(testInstance, flatError)
	require.Equal(testInstance, catalog.ShapeFlat, flatDocument.Shape)

	require.Equal(testInstance, nestedDocument.Tab, flatDocument.Tab)
	require.Equal(testInstance, "alpha", nestedDocument.Tab.ID)
	require.Equal(testInstance, 2, nestedDocument.Tab.Order)
	require.Equal(testInstance, "1.2.3", nestedDocument.Tab.Version)
	require.Len(testInstance, nestedDocument.Tab.Items, 1)
	require.Equal(testInstance, "<b>c</b>", nestedDocument.Tab.Items[0].Content)
	require.Equal(testInstance, true, nestedDocument.Tab.Items[0].Extra["collapsed"])
}

func TestEncodeTabDocumentRoundTrip(testInstance *testing.T) {
	flatDocument, decodeError := catalog.DecodeTabDocument([]byte(testFlatDocumentConstant), "")
	require.NoError(testInstance, decodeError)

	encoded, encodeError := catalog.EncodeTabDocument(flatDocument.Tab)
	require.NoError(testInstance, encodeError)
	require.Contains(testInstance, string(encoded), `"content": "<b>c</b>"`)

	var generic map[string]any
	require.NoError(testInstance, json.Unmarshal(encoded, &generic))
	require.Contains(testInstance, generic, "tab")
	require.Contains(testInstance, generic, "workflow")

	reread, rereadError := catalog.DecodeTabDocument(encoded, "")
	require.NoError(testInstance, rereadError)
	require.Equal(testInstance, catalog.ShapeNested, reread.Shape)
	require.Equal(testInstance, flatDocument.Tab, reread.Tab)
}

func TestTabDocumentKeepsUnknownTabFields(testInstance *testing.T) {
	testCases := []struct {
		name     string
		document string
	}{
		{name: "nested", document: `{"tab":{"id":"alpha","name":"Alpha","items":[],"color":"teal","pinned":true},"workflow":{}}`},
		{name: "flat", document: `{"id":"alpha","name":"Alpha","items":[],"color":"teal","pinned":true,"workflow":{}}`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			decoded, decodeError := catalog.DecodeTabDocument([]byte(testCase.document), "")
			require.NoError(testInstance, decodeError)
			require.Equal(testInstance, map[string]any{"color": "teal", "pinned": true}, decoded.Tab.Extra)

			encoded, encodeError := catalog.EncodeTabDocument(decoded.Tab)
			require.NoError(testInstance, encodeError)
			require.Less(testInstance, strings.Index(string(encoded), `"items"`), strings.Index(string(encoded), `"color"`))

			reread, rereadError := catalog.DecodeTabDocument(encoded, "")
			require.NoError(testInstance, rereadError)
			require.Equal(testInstance, decoded.Tab.Extra, reread.Tab.Extra)
		})
	}
}

func TestDecodeTabDocumentAppliesDefaults(testInstance *testing.T) {
	decoded, decodeError := catalog.DecodeTabDocument([]byte(`{"tab": {}}`), "seo-texts")
	require.NoError(testInstance, decodeError)

	require.Equal(testInstance, "seo-texts", decoded.Tab.ID)
	require.Equal(testInstance, "SEO-TEXTS", decoded.Tab.Name)
	require.Equal(testInstance, 1, decoded.Tab.Order)
	require.Equal(testInstance, catalog.InitialVersion, decoded.Tab.Version)
	require.Empty(testInstance, decoded.Tab.Items)
	require.Equal(testInstance, catalog.DefaultWorkflow(), decoded.Tab.Workflow)
	require.False(testInstance, decoded.HasName)
	require.False(testInstance, decoded.HasItems)
}

func TestDecodedDocumentValidateImport(testInstance *testing.T) {
	testCases := []struct {
		name        string
		payload     string
		expectError bool
	}{
		{name: "nested_complete", payload: `{"tab": {"name": "A", "items": []}}`},
		{name: "flat_complete", payload: `{"name": "A", "items": []}`},
		{name: "missing_name", payload: `{"tab": {"items": []}}`, expectError: true},
		{name: "missing_items", payload: `{"name": "A"}`, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			decoded, decodeError := catalog.DecodeTabDocument([]byte(testCase.payload), "a")
			require.NoError(testInstance, decodeError)
			validationError := decoded.ValidateImport()
			if testCase.expectError {
				require.ErrorIs(testInstance, validationError, catalog.ErrFormat)
				return
			}
			require.NoError(testInstance, validationError)
		})
	}
}

func TestDecodeTabDocumentRejectsMalformedPayloads(testInstance *testing.T) {
	for _, payload := range []string{`{"tab": "alpha"}`, `not json`, `{"items": ["text"]}`} {
		_, decodeError := catalog.DecodeTabDocument([]byte(payload), "a")
		require.ErrorIs(testInstance, decodeError, catalog.ErrFormat, payload)
	}
}

func TestManifestCodec(testInstance *testing.T) {
	manifest, decodeError := catalog.DecodeManifest([]byte(`{"tabs":{"alpha":{"name":"ALPHA","version":"1.2.3","order":1}}}`))
	require.NoError(testInstance, decodeError)
	require.Equal(testInstance, "1.2.3", manifest.Tabs["alpha"].Version)

	encoded, encodeError := catalog.EncodeManifest(manifest)
	require.NoError(testInstance, encodeError)
	require.True(testInstance, strings.Contains(string(encoded), `"release_notes"`))

	_, malformedError := catalog.DecodeManifest([]byte(`[`))
	require.ErrorIs(testInstance, malformedError, catalog.ErrFormat)
}

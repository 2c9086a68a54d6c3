package tabs_test

import (
	"context"
	"math/rand/v2"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/promptctl/internal/catalog"
	"github.com/temirov/promptctl/internal/contentstore"
	"github.com/temirov/promptctl/internal/localstore"
	"github.com/temirov/promptctl/internal/reconcile"
	"github.com/temirov/promptctl/internal/ui"
)

const (
	testPromptsDirectoryConstant = "/workspace/prompts"
	testExportsDirectoryConstant = "/workspace/exports"
)

type fixedClock struct {
	moment time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.moment
}

type memoryStore struct {
	objects map[string]contentstore.Object
}

func (store *memoryStore) RequireCredential() error {
	return nil
}

func (store *memoryStore) Get(_ context.Context, path string) (contentstore.Object, error) {
	object, exists := store.objects[path]
	if !exists {
		return contentstore.Object{}, contentstore.RemoteFailureError{Operation: contentstore.OperationGet, Path: path, StatusCode: http.StatusNotFound}
	}
	return object, nil
}

func (store *memoryStore) Put(_ context.Context, path string, content []byte, _ string, _ string) error {
	store.objects[path] = contentstore.Object{Path: path, Content: content, Token: "sha-" + path}
	return nil
}

func (store *memoryStore) Delete(_ context.Context, path string, _ string, _ string) error {
	delete(store.objects, path)
	return nil
}

type scriptedPrompter struct {
	answer  bool
	prompts []string
}

func (prompter *scriptedPrompter) Confirm(prompt string) (bool, error) {
	prompter.prompts = append(prompter.prompts, prompt)
	return prompter.answer, nil
}

type commandFixture struct {
	fileSystem afero.Fs
	localStore *localstore.Store
	remote     *memoryStore
	engine     *reconcile.Engine
}

func newCommandFixture(testInstance *testing.T) *commandFixture {
	testInstance.Helper()
	fileSystem := afero.NewMemMapFs()
	clock := fixedClock{moment: time.Date(2025, time.June, 2, 10, 30, 0, 0, time.Local)}
	localStore, storeError := localstore.NewStore(
		localstore.Configuration{Directory: testPromptsDirectoryConstant},
		localstore.Dependencies{FileSystem: fileSystem, Clock: clock},
	)
	require.NoError(testInstance, storeError)

	remote := &memoryStore{objects: map[string]contentstore.Object{}}
	engine, engineError := reconcile.NewEngine(reconcile.Configuration{ExportsDirectory: testExportsDirectoryConstant}, reconcile.Dependencies{
		LocalCatalog:        localStore,
		RemoteStore:         remote,
		FileSystem:          fileSystem,
		Clock:               clock,
		IdentifierGenerator: catalog.NewItemIdentifierGenerator(clock, rand.New(rand.NewPCG(3, 4))),
	})
	require.NoError(testInstance, engineError)
	return &commandFixture{fileSystem: fileSystem, localStore: localStore, remote: remote, engine: engine}
}

func (fixture *commandFixture) engineProvider(*cobra.Command) (*reconcile.Engine, error) {
	return fixture.engine, nil
}

func (fixture *commandFixture) seedTab(testInstance *testing.T, tab catalog.Tab) {
	testInstance.Helper()
	require.NoError(testInstance, fixture.localStore.SaveTab(tab))
	manifest, loadError := fixture.localStore.LoadManifest()
	require.NoError(testInstance, loadError)
	manifest.Tabs[tab.ID] = tab.Summary()
	require.NoError(testInstance, fixture.localStore.SaveManifest(manifest))
}

func prompterFactory(prompter ui.ConfirmationPrompter) func(*cobra.Command) ui.ConfirmationPrompter {
	return func(*cobra.Command) ui.ConfirmationPrompter {
		return prompter
	}
}

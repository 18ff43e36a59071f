package botconfig

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gadminbot/clients/docstore"
)

const faqDocument = `[
	{
		"categoria": "Password",
		"preguntas": ["how do I reset my password"],
		"respuesta_estandar": "Use the account portal",
		"pasos_detallados": ["Open the portal", "Click reset"],
		"keywords": ["password"]
	}
]`

func newTestLoader(client *docstore.MockDocumentStoreClient) *Loader {
	loader := NewLoader(client)
	loader.retryInterval = time.Millisecond
	return loader
}

func TestLoad_Success(t *testing.T) {
	mockDocstore := new(docstore.MockDocumentStoreClient)
	mockDocstore.On("GetPromptTemplate", mock.Anything).
		Return(mo.Some(`Classify this. --- User: "{{user_input}}" JSON Response:`), nil)
	mockDocstore.On("GetFaqDocument", mock.Anything).Return(mo.Some(faqDocument), nil)

	loader := newTestLoader(mockDocstore)

	_, loaded := loader.Current()
	assert.False(t, loaded, "snapshot must be absent before Load concludes")

	loader.Load(context.Background())

	rt, loaded := loader.Current()
	require.True(t, loaded)
	assert.False(t, rt.Degraded)
	assert.Contains(t, rt.PromptTemplate, "{{user_input}}")
	// The trailer gets broken onto its own line.
	assert.Contains(t, rt.PromptTemplate, "\n--- User:")
	require.Len(t, rt.FaqEntries, 1)
	assert.Equal(t, "Use the account portal", rt.FaqEntries[0].Answer())
	assert.Contains(t, rt.KnowledgeBaseText, `Category: Password. Question: "how do I reset my password".`)
	mockDocstore.AssertNumberOfCalls(t, "GetPromptTemplate", 1)
}

func TestLoad_MissingDocumentsFallBackWithoutRetry(t *testing.T) {
	mockDocstore := new(docstore.MockDocumentStoreClient)
	mockDocstore.On("GetPromptTemplate", mock.Anything).Return(mo.None[string](), nil)
	mockDocstore.On("GetFaqDocument", mock.Anything).Return(mo.None[string](), nil)

	loader := newTestLoader(mockDocstore)
	loader.Load(context.Background())

	rt, loaded := loader.Current()
	require.True(t, loaded)
	assert.False(t, rt.Degraded, "absent documents use defaults but are not a degraded load")
	assert.Contains(t, rt.PromptTemplate, "{{user_input}}")
	assert.Empty(t, rt.FaqEntries)
	mockDocstore.AssertNumberOfCalls(t, "GetPromptTemplate", 1)
}

func TestLoad_RetriesThenDegrades(t *testing.T) {
	mockDocstore := new(docstore.MockDocumentStoreClient)
	mockDocstore.On("GetPromptTemplate", mock.Anything).
		Return(mo.None[string](), fmt.Errorf("document store unavailable"))

	loader := newTestLoader(mockDocstore)
	loader.Load(context.Background())

	rt, loaded := loader.Current()
	require.True(t, loaded, "exhausted retries still conclude loading")
	assert.True(t, rt.Degraded)
	assert.Contains(t, rt.PromptTemplate, "{{user_input}}")
	mockDocstore.AssertNumberOfCalls(t, "GetPromptTemplate", 3)
}

func TestLoad_UnparseableFaqRetries(t *testing.T) {
	mockDocstore := new(docstore.MockDocumentStoreClient)
	mockDocstore.On("GetPromptTemplate", mock.Anything).Return(mo.Some("prompt {{user_input}}"), nil)
	mockDocstore.On("GetFaqDocument", mock.Anything).Return(mo.Some("this is not a JSON array"), nil)

	loader := newTestLoader(mockDocstore)
	loader.Load(context.Background())

	rt, loaded := loader.Current()
	require.True(t, loaded)
	assert.True(t, rt.Degraded)
	mockDocstore.AssertNumberOfCalls(t, "GetFaqDocument", 3)
}

package mongodb

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/repository"
)

func TestDocumentsRoundTrip(t *testing.T) {
	schema, err := models.LookupSchema("electronics")
	require.NoError(t, err)

	table := models.NewTable(schema)
	table.Columns = append(table.Columns, "supplier")
	table.Rows = append(table.Rows,
		models.NewRecord(map[string]string{"name": "LED", "parameter": "red", "supplier": "acme"}, 30),
		models.NewRecord(map[string]string{"name": "resistor", "parameter": "10k"}, 0),
	)

	docs := toDocuments(table)
	require.Len(t, docs, 3)

	header := docs[0].(rowDocument)
	assert.Equal(t, headerPosition, header.Position)
	assert.Equal(t, table.Columns, header.Columns)

	first := docs[1].(rowDocument)
	assert.Equal(t, 0, first.Position)
	assert.Equal(t, 30, first.Quantity)
	assert.NotContains(t, first.Fields, "location", "empty cells are not stored")

	stored := make([]rowDocument, len(docs))
	for i, d := range docs {
		stored[i] = d.(rowDocument)
	}
	back := fromDocuments(schema, stored)
	assert.Equal(t, table.Columns, back.Columns)
	require.Len(t, back.Rows, 2)
	assert.Equal(t, "acme", back.Rows[0].Get("supplier"))
	assert.Equal(t, 30, back.Rows[0].Quantity)
	assert.Equal(t, "10k", back.Rows[1].Get("parameter"))
}

func TestFromDocumentsWithoutHeaderUsesSchemaColumns(t *testing.T) {
	schema, err := models.LookupSchema("pcbs")
	require.NoError(t, err)

	back := fromDocuments(schema, []rowDocument{{Position: 0, Fields: map[string]string{"name": "main"}, Quantity: 2}})
	assert.Equal(t, schema.Columns, back.Columns)
	require.Len(t, back.Rows, 1)
	assert.Equal(t, 2, back.Rows[0].Quantity)
}

func TestCollectionName(t *testing.T) {
	assert.Equal(t, "inventory_fasteners", CollectionName(models.KindFasteners))
}

func TestClassify(t *testing.T) {
	conflict := classify(mongo.CommandError{Code: 112, Name: "WriteConflict"})
	assert.ErrorIs(t, conflict, repository.ErrStoreLocked)

	timeout := classify(mongo.CommandError{Code: 24, Name: "LockTimeout"})
	assert.ErrorIs(t, timeout, repository.ErrStoreLocked)

	denied := classify(mongo.CommandError{Code: 13, Name: "Unauthorized"})
	assert.ErrorIs(t, denied, repository.ErrStoreUnavailable)

	plain := classify(errors.New("connection reset"))
	assert.ErrorIs(t, plain, repository.ErrStoreUnavailable)
	assert.NotErrorIs(t, plain, repository.ErrStoreLocked)
}

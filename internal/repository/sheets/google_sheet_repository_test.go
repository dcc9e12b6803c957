package sheets_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/labstock/internal/domain/models"
	"github.com/mamadbah2/labstock/internal/repository"
	"github.com/mamadbah2/labstock/internal/repository/sheets"
)

// fakeSheets emulates the subset of the Sheets REST API the store calls.
type fakeSheets struct {
	mu         sync.Mutex
	worksheets map[string][][]interface{}
	updates    int
	failUpdate bool
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, ":batchUpdate"):
		var req sheetsapi.BatchUpdateSpreadsheetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, sub := range req.Requests {
			if sub.AddSheet != nil {
				f.worksheets[sub.AddSheet.Properties.Title] = nil
			}
		}
		writeJSON(w, map[string]interface{}{})

	case strings.Contains(path, "/values/"):
		title := worksheetFromRange(path[strings.Index(path, "/values/")+len("/values/"):])
		if r.Method == http.MethodPut {
			if f.failUpdate {
				http.Error(w, `{"error":{"code":503,"message":"backend error"}}`, http.StatusServiceUnavailable)
				return
			}
			var body sheetsapi.ValueRange
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.updates++
			f.worksheets[title] = body.Values
			writeJSON(w, map[string]interface{}{})
			return
		}
		writeJSON(w, map[string]interface{}{"values": trimGrid(f.worksheets[title])})

	default:
		sheetsList := make([]map[string]interface{}, 0, len(f.worksheets))
		for title := range f.worksheets {
			sheetsList = append(sheetsList, map[string]interface{}{
				"properties": map[string]interface{}{"title": title},
			})
		}
		writeJSON(w, map[string]interface{}{"sheets": sheetsList})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func worksheetFromRange(rng string) string {
	if i := strings.Index(rng, "!"); i >= 0 {
		rng = rng[:i]
	}
	return strings.Trim(rng, "'")
}

// trimGrid drops trailing empty rows the way the real API omits them.
func trimGrid(grid [][]interface{}) [][]interface{} {
	end := len(grid)
	for end > 0 {
		empty := true
		for _, cell := range grid[end-1] {
			if cell != "" {
				empty = false
				break
			}
		}
		if !empty {
			break
		}
		end--
	}
	return grid[:end]
}

func newStore(t *testing.T, fake *fakeSheets) *sheets.GoogleSheetRepository {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	store, err := sheets.NewGoogleSheetRepositoryWithOptions(context.Background(), "sheet-id", nil,
		option.WithEndpoint(server.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)
	return store
}

func pcbs(t *testing.T) models.Schema {
	t.Helper()
	s, err := models.LookupSchema("pcbs")
	require.NoError(t, err)
	return s
}

func TestLoadCreatesWorksheet(t *testing.T) {
	fake := &fakeSheets{worksheets: map[string][][]interface{}{}}
	store := newStore(t, fake)

	table, err := store.Load(context.Background(), pcbs(t))
	require.NoError(t, err)
	assert.Empty(t, table.Rows)

	require.Contains(t, fake.worksheets, "pcbs")
	require.Len(t, fake.worksheets["pcbs"], 1)
	assert.Equal(t, "name", fake.worksheets["pcbs"][0][0])
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	fake := &fakeSheets{worksheets: map[string][][]interface{}{
		"pcbs": {
			{"name", "size", "quantity", "location", "note"},
			{"mainboard", "100x80", float64(4), "shelf", ""},
			{"sensor", "20x20", float64(12)},
		},
	}}
	store := newStore(t, fake)
	ctx := context.Background()

	table, err := store.Load(ctx, pcbs(t))
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 4, table.Rows[0].Quantity)
	assert.Equal(t, "20x20", table.Rows[1].Get("size"))

	table.Rows = table.Rows[:1]
	require.NoError(t, store.Save(ctx, table))
	assert.Equal(t, 1, fake.updates)

	written := fake.worksheets["pcbs"]
	require.Len(t, written, 3, "stale row must be overwritten with blanks")
	for _, cell := range written[2] {
		assert.Equal(t, "", cell)
	}

	reloaded, err := store.Load(ctx, pcbs(t))
	require.NoError(t, err)
	require.Len(t, reloaded.Rows, 1)
	assert.Equal(t, "mainboard", reloaded.Rows[0].Get("name"))
}

func TestSaveFailureReturnsSaveError(t *testing.T) {
	fake := &fakeSheets{worksheets: map[string][][]interface{}{
		"pcbs": {{"name", "size", "quantity", "location", "note"}},
	}}
	store := newStore(t, fake)

	fake.failUpdate = true
	err := store.Save(context.Background(), models.NewTable(pcbs(t)))

	var saveErr *repository.SaveError
	require.ErrorAs(t, err, &saveErr)
	assert.Equal(t, models.KindPCBs, saveErr.Kind)
	assert.ErrorIs(t, err, repository.ErrStoreUnavailable)
	assert.Len(t, fake.worksheets["pcbs"], 1)
}

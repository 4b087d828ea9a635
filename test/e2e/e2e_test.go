//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type documentPayload struct {
	ID           string  `json:"id"`
	OrgID        string  `json:"org_id"`
	ClientID     string  `json:"client_id"`
	FileName     string  `json:"file_name"`
	SizeBytes    int64   `json:"size_bytes"`
	Status       string  `json:"status"`
	FileType     string  `json:"file_type"`
	Category     string  `json:"category"`
	Folder       string  `json:"folder"`
	Level        string  `json:"level"`
	Confidence   float64 `json:"confidence"`
	ClassifiedBy string  `json:"classified_by"`
}

type learningEventPayload struct {
	ID              string `json:"id"`
	Keyword         string `json:"keyword"`
	TargetFileType  string `json:"target_file_type"`
	CorrectionCount int    `json:"correction_count"`
	State           string `json:"state"`
}

func createClient(t *testing.T, env *E2ETestEnv, name string) string {
	t.Helper()
	resp, err := env.Post("/clients", map[string]string{"name": name}, env.AuthToken)
	require.NoError(t, err)

	var client struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &client))
	require.NotEmpty(t, client.ID)
	return client.ID
}

// uploadDocument drives a file through init, presigned upload, and complete.
func uploadDocument(t *testing.T, env *E2ETestEnv, clientID, fileName string, content []byte) documentPayload {
	t.Helper()

	initResp, err := env.Post("/documents", map[string]string{
		"client_id":    clientID,
		"file_name":    fileName,
		"content_type": "application/pdf",
	}, env.AuthToken)
	require.NoError(t, err)

	var initData struct {
		DocumentID string `json:"document_id"`
		StorageKey string `json:"storage_key"`
		UploadURL  string `json:"upload_url"`
	}
	require.NoError(t, json.Unmarshal(initResp.Data, &initData))
	require.NotEmpty(t, initData.DocumentID)
	require.NotEmpty(t, initData.UploadURL)

	require.NoError(t, env.UploadFile(initData.UploadURL, content, "application/pdf"))

	completeResp, err := env.Post("/documents/"+initData.DocumentID+"/complete", nil, env.AuthToken)
	require.NoError(t, err)

	var doc documentPayload
	require.NoError(t, json.Unmarshal(completeResp.Data, &doc))
	return doc
}

// TestE2E_Bootstrap tests organization and API key creation
func TestE2E_Bootstrap(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("create organization", func(t *testing.T) {
		resp, err := env.Post("/orgs", map[string]string{"name": "Test Organization"}, "")
		require.NoError(t, err)

		var org struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			CreatedAt string `json:"created_at"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &org))
		assert.NotEmpty(t, org.ID)
		assert.Equal(t, "Test Organization", org.Name)
		assert.NotEmpty(t, org.CreatedAt)
	})

	t.Run("create API key", func(t *testing.T) {
		orgResp, err := env.Post("/orgs", map[string]string{"name": "Key Test Org"}, "")
		require.NoError(t, err)

		var org struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(orgResp.Data, &org))

		keyResp, err := env.Post("/apikeys", map[string]string{
			"org_id": org.ID,
			"name":   "test-key",
		}, "")
		require.NoError(t, err)

		var key struct {
			Token string `json:"token"`
			Name  string `json:"name"`
		}
		require.NoError(t, json.Unmarshal(keyResp.Data, &key))
		assert.NotEmpty(t, key.Token)
		assert.Equal(t, "test-key", key.Name)
		assert.Len(t, key.Token, 68) // iqk_ prefix (4) + 32 bytes hex (64) = 68 chars
	})

	t.Run("API key works for authentication", func(t *testing.T) {
		orgResp, err := env.Post("/orgs", map[string]string{"name": "Auth Test Org"}, "")
		require.NoError(t, err)

		var org struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(orgResp.Data, &org))

		keyResp, err := env.Post("/apikeys", map[string]string{
			"org_id": org.ID,
			"name":   "auth-test-key",
		}, "")
		require.NoError(t, err)

		var key struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(keyResp.Data, &key))

		resp, err := env.Get("/documents", key.Token)
		require.NoError(t, err)

		var page struct {
			Items   []interface{} `json:"items"`
			HasMore bool          `json:"has_more"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		assert.Empty(t, page.Items)
	})

	t.Run("invalid API key returns 401", func(t *testing.T) {
		_, err := env.Get("/documents", "invalid-token")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "401")
	})
}

// TestE2E_DocumentLifecycle exercises upload, classification, download, delete
func TestE2E_DocumentLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	clientID := createClient(t, env, "Smith Holdings")
	content := []byte("%PDF-1.4 fake bank statement content")

	doc := uploadDocument(t, env, clientID, "Bank_Statement_Jan_2025.pdf", content)

	t.Run("filename rules classify on completion", func(t *testing.T) {
		assert.Equal(t, "classified", doc.Status)
		assert.Equal(t, "Bank Statement", doc.FileType)
		assert.Equal(t, "Financials", doc.Category)
		assert.Equal(t, "financials", doc.Folder)
		assert.Equal(t, "client", doc.Level)
		assert.Equal(t, 0.85, doc.Confidence)
		assert.Equal(t, "pattern", doc.ClassifiedBy)
		assert.Equal(t, int64(len(content)), doc.SizeBytes)
	})

	t.Run("get document", func(t *testing.T) {
		resp, err := env.Get("/documents/"+doc.ID, env.AuthToken)
		require.NoError(t, err)

		var got documentPayload
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.Equal(t, doc.ID, got.ID)
		assert.Equal(t, "Bank_Statement_Jan_2025.pdf", got.FileName)
	})

	t.Run("list documents", func(t *testing.T) {
		resp, err := env.Get("/documents", env.AuthToken)
		require.NoError(t, err)

		var page struct {
			Items   []documentPayload `json:"items"`
			HasMore bool              `json:"has_more"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &page))
		require.Len(t, page.Items, 1)
		assert.Equal(t, doc.ID, page.Items[0].ID)
		assert.False(t, page.HasMore)
	})

	t.Run("download round-trips content", func(t *testing.T) {
		resp, err := env.Get("/documents/"+doc.ID+"/download", env.AuthToken)
		require.NoError(t, err)

		var dl struct {
			DownloadURL string `json:"download_url"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &dl))
		require.NotEmpty(t, dl.DownloadURL)

		downloaded, err := env.DownloadFile(dl.DownloadURL)
		require.NoError(t, err)
		assert.Equal(t, content, downloaded)
	})

	t.Run("delete document", func(t *testing.T) {
		_, err := env.Delete("/documents/"+doc.ID, env.AuthToken)
		require.NoError(t, err)

		_, err = env.Get("/documents/"+doc.ID, env.AuthToken)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})
}

// TestE2E_UnmatchedDocumentParks verifies the no-content-classifier fallback
func TestE2E_UnmatchedDocumentParks(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	clientID := createClient(t, env, "Parked Client")
	doc := uploadDocument(t, env, clientID, "IMG_4821.pdf", []byte("opaque scan bytes"))

	assert.Equal(t, "pending_classification", doc.Status)
	assert.Empty(t, doc.FileType)
}

// TestE2E_ClassifyDryRun tests the stateless classification endpoints
func TestE2E_ClassifyDryRun(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	type classifyResult struct {
		Matched        bool `json:"matched"`
		Classification *struct {
			FileType   string  `json:"file_type"`
			Category   string  `json:"category"`
			Folder     string  `json:"folder"`
			Level      string  `json:"level"`
			Confidence float64 `json:"confidence"`
			Source     string  `json:"source"`
		} `json:"classification"`
	}

	classify := func(fileName string) classifyResult {
		resp, err := env.Post("/classify", map[string]string{"file_name": fileName}, env.AuthToken)
		require.NoError(t, err)
		var result classifyResult
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		return result
	}

	t.Run("keyword hit", func(t *testing.T) {
		result := classify("john_passport_scan.pdf")
		require.True(t, result.Matched)
		assert.Equal(t, "Passport", result.Classification.FileType)
		assert.Equal(t, "identification", result.Classification.Folder)
		assert.Equal(t, "client", result.Classification.Level)
		assert.Equal(t, 0.85, result.Classification.Confidence)
	})

	t.Run("no keyword hit", func(t *testing.T) {
		result := classify("random_stuff.pdf")
		assert.False(t, result.Matched)
		assert.Nil(t, result.Classification)
	})

	t.Run("exclusion keyword suppresses the rule", func(t *testing.T) {
		// Bare "statement" maps to Bank Statement, but not for service charges.
		result := classify("service_charge_statement.pdf")
		assert.False(t, result.Matched)
	})

	t.Run("placement for known type", func(t *testing.T) {
		resp, err := env.Post("/classify/placement", map[string]string{"file_type": "Bank Statement"}, env.AuthToken)
		require.NoError(t, err)

		var placement struct {
			Folder string `json:"folder"`
			Level  string `json:"level"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &placement))
		assert.Equal(t, "financials", placement.Folder)
		assert.Equal(t, "client", placement.Level)
	})

	t.Run("placement falls back to miscellaneous", func(t *testing.T) {
		resp, err := env.Post("/classify/placement", map[string]string{"file_type": "Alien Artifact"}, env.AuthToken)
		require.NoError(t, err)

		var placement struct {
			Folder string `json:"folder"`
			Level  string `json:"level"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &placement))
		assert.Equal(t, "miscellaneous", placement.Folder)
		assert.Equal(t, "client", placement.Level)
	})

	t.Run("file types vocabulary", func(t *testing.T) {
		resp, err := env.Get("/classify/file-types", env.AuthToken)
		require.NoError(t, err)

		var data struct {
			FileTypes []string `json:"file_types"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &data))
		assert.Contains(t, data.FileTypes, "Bank Statement")
		assert.Contains(t, data.FileTypes, "Passport")
	})
}

// TestE2E_LearningLoop drives corrections to promotion and back
func TestE2E_LearningLoop(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	clientID := createClient(t, env, "Learning Client")

	reclassify := func(docID string) []string {
		resp, err := env.Post("/documents/"+docID+"/reclassify", map[string]string{
			"file_type": "Passport",
		}, env.AuthToken)
		require.NoError(t, err)

		var result struct {
			Document        documentPayload `json:"document"`
			LearnedKeywords []string        `json:"learned_keywords"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, "Passport", result.Document.FileType)
		assert.Equal(t, "manual", result.Document.ClassifiedBy)
		return result.LearnedKeywords
	}

	// Three corrections of the same unrecognized filename hit the threshold.
	var learned []string
	for i := 0; i < 3; i++ {
		doc := uploadDocument(t, env, clientID, "acme_form.pdf", []byte(fmt.Sprintf("scan %d", i)))
		require.Equal(t, "pending_classification", doc.Status)
		learned = reclassify(doc.ID)
	}
	assert.Contains(t, learned, "acme")

	t.Run("promoted keyword classifies new uploads", func(t *testing.T) {
		doc := uploadDocument(t, env, clientID, "acme_renewal.pdf", []byte("another scan"))
		assert.Equal(t, "classified", doc.Status)
		assert.Equal(t, "Passport", doc.FileType)
		assert.Equal(t, "pattern", doc.ClassifiedBy)
	})

	var acmeEvent learningEventPayload
	t.Run("events are listed", func(t *testing.T) {
		resp, err := env.Get("/learning/events", env.AuthToken)
		require.NoError(t, err)

		var events []learningEventPayload
		require.NoError(t, json.Unmarshal(resp.Data, &events))
		require.NotEmpty(t, events)
		for _, ev := range events {
			assert.Equal(t, "Passport", ev.TargetFileType)
			assert.Equal(t, 3, ev.CorrectionCount)
			assert.Equal(t, "active", ev.State)
			if ev.Keyword == "acme" {
				acmeEvent = ev
			}
		}
		require.NotEmpty(t, acmeEvent.ID)
	})

	t.Run("stats reflect promotions", func(t *testing.T) {
		resp, err := env.Get("/learning/stats", env.AuthToken)
		require.NoError(t, err)

		var stats struct {
			TotalLearned          int `json:"total_learned"`
			ThisWeek              int `json:"this_week"`
			FileTypesWithLearning int `json:"file_types_with_learning"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &stats))
		assert.GreaterOrEqual(t, stats.TotalLearned, 1)
		assert.GreaterOrEqual(t, stats.ThisWeek, 1)
		assert.Equal(t, 1, stats.FileTypesWithLearning)
	})

	t.Run("undo removes the learned keyword", func(t *testing.T) {
		resp, err := env.Post("/learning/events/"+acmeEvent.ID+"/undo", nil, env.AuthToken)
		require.NoError(t, err)

		var ev learningEventPayload
		require.NoError(t, json.Unmarshal(resp.Data, &ev))
		assert.Equal(t, "undone", ev.State)

		classifyResp, err := env.Post("/classify", map[string]string{"file_name": "acme_renewal.pdf"}, env.AuthToken)
		require.NoError(t, err)

		var result struct {
			Matched bool `json:"matched"`
		}
		require.NoError(t, json.Unmarshal(classifyResp.Data, &result))
		assert.False(t, result.Matched)
	})

	t.Run("undo twice fails", func(t *testing.T) {
		_, err := env.Post("/learning/events/"+acmeEvent.ID+"/undo", nil, env.AuthToken)
		require.Error(t, err)
	})

	t.Run("dismiss all clears the review queue", func(t *testing.T) {
		resp, err := env.Post("/learning/events/dismiss-all", nil, env.AuthToken)
		require.NoError(t, err)

		var result struct {
			Dismissed int64 `json:"dismissed"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.GreaterOrEqual(t, result.Dismissed, int64(1))

		listResp, err := env.Get("/learning/events", env.AuthToken)
		require.NoError(t, err)
		var events []learningEventPayload
		require.NoError(t, json.Unmarshal(listResp.Data, &events))
		assert.Empty(t, events)
	})
}

// TestE2E_KnowledgeConsolidation tests duplicate and conflict detection
func TestE2E_KnowledgeConsolidation(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	createItem := func(fieldPath, sourceType string, canonical bool, value string) string {
		resp, err := env.Post("/knowledge-items", map[string]interface{}{
			"field_path":   fieldPath,
			"is_canonical": canonical,
			"label":        "Date of Birth",
			"value":        json.RawMessage(value),
			"source_type":  sourceType,
		}, env.AuthToken)
		require.NoError(t, err)

		var item struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &item))
		return item.ID
	}

	docItem := createItem("client.dob", "document", true, `"1990-01-15"`)
	manualItem := createItem("client.dob", "manual", true, `"1990-01-16"`)
	customItem := createItem("custom.spouse_name", "manual", false, `"Alex"`)

	t.Run("review surfaces duplicates, conflicts, custom items", func(t *testing.T) {
		resp, err := env.Get("/consolidation/review", env.AuthToken)
		require.NoError(t, err)

		var review struct {
			Duplicates []struct {
				FieldPath string   `json:"field_path"`
				KeepID    string   `json:"keep_id"`
				RemoveIDs []string `json:"remove_ids"`
			} `json:"duplicates"`
			Conflicts []struct {
				FieldPath string   `json:"field_path"`
				ItemIDs   []string `json:"item_ids"`
			} `json:"conflicts"`
			CustomItems []struct {
				ID        string `json:"id"`
				FieldPath string `json:"field_path"`
			} `json:"custom_items"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &review))

		require.Len(t, review.Duplicates, 1)
		assert.Equal(t, "client.dob", review.Duplicates[0].FieldPath)
		assert.Equal(t, docItem, review.Duplicates[0].KeepID)
		assert.Equal(t, []string{manualItem}, review.Duplicates[0].RemoveIDs)

		require.Len(t, review.Conflicts, 1)
		assert.Equal(t, "client.dob", review.Conflicts[0].FieldPath)

		require.Len(t, review.CustomItems, 1)
		assert.Equal(t, customItem, review.CustomItems[0].ID)
	})

	t.Run("apply removes losing duplicates", func(t *testing.T) {
		resp, err := env.Post("/consolidation/duplicates/apply", map[string]interface{}{}, env.AuthToken)
		require.NoError(t, err)

		var result struct {
			RecommendationsApplied int   `json:"recommendations_applied"`
			ItemsRemoved           int64 `json:"items_removed"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, 1, result.RecommendationsApplied)
		assert.Equal(t, int64(1), result.ItemsRemoved)

		listResp, err := env.Get("/knowledge-items", env.AuthToken)
		require.NoError(t, err)

		var items []struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(listResp.Data, &items))
		ids := make([]string, len(items))
		for i, item := range items {
			ids[i] = item.ID
		}
		assert.ElementsMatch(t, []string{docItem, customItem}, ids)
	})

	t.Run("reclassify custom item onto the canonical schema", func(t *testing.T) {
		fieldPath := "client.spouse_name"
		canonical := true
		resp, err := env.Patch("/knowledge-items/"+customItem, map[string]interface{}{
			"field_path":   fieldPath,
			"is_canonical": canonical,
		}, env.AuthToken)
		require.NoError(t, err)

		var item struct {
			FieldPath   string `json:"field_path"`
			IsCanonical bool   `json:"is_canonical"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &item))
		assert.Equal(t, "client.spouse_name", item.FieldPath)
		assert.True(t, item.IsCanonical)

		reviewResp, err := env.Get("/consolidation/review", env.AuthToken)
		require.NoError(t, err)
		var review struct {
			CustomItems []interface{} `json:"custom_items"`
		}
		require.NoError(t, json.Unmarshal(reviewResp.Data, &review))
		assert.Empty(t, review.CustomItems)
	})
}

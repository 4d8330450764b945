// Package search keeps a secondary Elasticsearch index of contacts. The
// index is optional: when no client is configured the repository falls
// back to SQL filtering, and the index is rebuilt lazily by writes.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/AndriiVeremi/contacts-api/internal/models"
)

const ContactIndex = "contacts"

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	esCfg := elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("connecting to elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("elasticsearch error: %s: %s", res.Status(), body)
	}

	return client, nil
}

type Contacts struct {
	ES    *elasticsearch.Client
	Index string
}

func NewContacts(es *elasticsearch.Client) *Contacts {
	return &Contacts{ES: es, Index: ContactIndex}
}

func (s *Contacts) IndexContact(ctx context.Context, contact *models.Contact) error {
	data, err := json.Marshal(contact)
	if err != nil {
		return err
	}

	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(data),
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(contact.ID), 10)),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("indexing contact %d: %s", contact.ID, res.Status())
	}
	return nil
}

func (s *Contacts) DeleteContact(ctx context.Context, contactID uint) error {
	res, err := s.ES.Delete(
		s.Index,
		strconv.FormatUint(uint64(contactID), 10),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	// 404 just means the contact never made it into the index.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("deleting contact %d from index: %s", contactID, res.Status())
	}
	return nil
}

// Search runs a per-user prefix search over the given criteria. Empty
// criteria are skipped; at least one must be set.
func (s *Contacts) Search(ctx context.Context, userID uint, firstName, lastName, email string) ([]models.Contact, error) {
	must := []map[string]any{
		{"term": map[string]any{"user_id": userID}},
	}
	if firstName != "" {
		must = append(must, map[string]any{
			"match_phrase_prefix": map[string]any{"first_name": firstName},
		})
	}
	if lastName != "" {
		must = append(must, map[string]any{
			"match_phrase_prefix": map[string]any{"last_name": lastName},
		})
	}
	if email != "" {
		must = append(must, map[string]any{
			"match_phrase_prefix": map[string]any{"email": email},
		})
	}

	body := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{"must": must},
		},
		"size": 100,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("searching contacts: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("searching contacts: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Contact `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	contacts := make([]models.Contact, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		contacts[i] = hit.Source
	}
	return contacts, nil
}

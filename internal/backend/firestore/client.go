// Package firestore implements docstore.Store using the Cloud Firestore
// REST API.
package firestore

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	fs "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"vtask/internal/config"
	"vtask/internal/docstore"
)

const (
	// APITimeout is the timeout for API calls.
	APITimeout = 10 * time.Second

	// OAuth scope for Cloud Firestore
	Scope = "https://www.googleapis.com/auth/datastore"

	serverTime = "REQUEST_TIME"
)

// Client implements docstore.Store using Cloud Firestore.
type Client struct {
	docs     *fs.ProjectsDatabasesDocumentsService
	http     *http.Client
	basePath string
	database string
	log      *slog.Logger
}

var _ docstore.Store = (*Client)(nil)

// New creates a new Firestore client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Client, error) {
	if cfg.FirestoreProject == "" {
		return nil, fmt.Errorf("firestore.project %w", config.ErrNotConfigured)
	}

	// Load OAuth client config
	clientJSON, err := cfg.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read oauth_client.json: %w", docstore.ErrUnauthorized, err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, Scope)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid oauth_client.json: %w", docstore.ErrUnauthorized, err)
	}

	// Load token
	tokenData, err := cfg.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("%w: not logged in (run: vtask login): %w", docstore.ErrUnauthorized, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("%w: invalid token.json (run: vtask login): %w", docstore.ErrUnauthorized, err)
	}

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)
	httpClient := oauth2.NewClient(ctx, tokenSource)

	return NewWithHTTPClient(ctx, httpClient, cfg.FirestoreProject, cfg.FirestoreDatabase, log)
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Extra options such as option.WithEndpoint are passed to the service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, project, database string, log *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if database == "" {
		database = config.DefaultFirestoreDatabase
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := fs.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore service: %w", err)
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Client{
		docs:     svc.Projects.Databases.Documents,
		http:     httpClient,
		basePath: svc.BasePath,
		database: fmt.Sprintf("projects/%s/databases/%s", project, database),
		log:      log,
	}, nil
}

func (c *Client) root() string {
	return c.database + "/documents"
}

func (c *Client) name(collection, id string) string {
	return c.root() + "/" + collection + "/" + id
}

// Insert implements docstore.Store. Ids are generated client side, as the
// Firestore SDKs do, so the document can be created in a commit.
func (c *Client) Insert(ctx context.Context, collection string, fields docstore.Fields) (docstore.Doc, error) {
	id, err := autoID()
	if err != nil {
		return docstore.Doc{}, err
	}
	w, err := c.write(docstore.Set(collection, id, fields))
	if err != nil {
		return docstore.Doc{}, err
	}
	w.CurrentDocument = &fs.Precondition{Exists: false, ForceSendFields: []string{"Exists"}}

	at, err := c.commit(ctx, []*fs.Write{w})
	if err != nil {
		return docstore.Doc{}, err
	}
	return docstore.Doc{ID: id, Fields: fields.Resolve(at)}, nil
}

// Get implements docstore.Store.
func (c *Client) Get(ctx context.Context, collection, id string) (docstore.Doc, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	doc, err := c.docs.Get(c.name(collection, id)).Context(ctx).Do()
	if err != nil {
		return docstore.Doc{}, wrapError(err)
	}
	return fromDocument(doc)
}

// Update implements docstore.Store.
func (c *Client) Update(ctx context.Context, collection, id string, fields docstore.Fields) (time.Time, error) {
	return c.Commit(ctx, []docstore.Write{docstore.Update(collection, id, fields)})
}

// Delete implements docstore.Store.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	_, err := c.Commit(ctx, []docstore.Write{docstore.Delete(collection, id)})
	return err
}

// Query implements docstore.Store with a structured query filtering on
// field server side.
func (c *Client) Query(ctx context.Context, collection, field string, value any) ([]docstore.Doc, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	where, err := fieldFilter(field, value)
	if err != nil {
		return nil, err
	}
	results, err := c.runQuery(ctx, &fs.RunQueryRequest{
		StructuredQuery: &fs.StructuredQuery{
			From:  []*fs.CollectionSelector{{CollectionId: collection}},
			Where: where,
		},
	})
	if err != nil {
		return nil, err
	}

	var out []docstore.Doc
	for _, r := range results {
		if r.Document == nil {
			continue
		}
		doc, err := fromDocument(r.Document)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	c.log.Debug("firestore query", "collection", collection, "field", field, "matches", len(out))
	return out, nil
}

func fieldFilter(field string, value any) (*fs.Filter, error) {
	ref := &fs.FieldReference{FieldPath: field}
	if value == nil {
		return &fs.Filter{UnaryFilter: &fs.UnaryFilter{Field: ref, Op: "IS_NULL"}}, nil
	}
	v, err := toValue(value)
	if err != nil {
		return nil, err
	}
	return &fs.Filter{FieldFilter: &fs.FieldFilter{Field: ref, Op: "EQUAL", Value: &v}}, nil
}

// runQuery posts to documents:runQuery. The endpoint streams a JSON array
// with one entry per document, so it is decoded here rather than through
// the generated call.
func (c *Client) runQuery(ctx context.Context, req *fs.RunQueryRequest) ([]*fs.RunQueryResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	url := strings.TrimSuffix(c.basePath, "/") + "/v1/" + c.root() + ":runQuery"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, wrapError(err)
	}
	defer resp.Body.Close()
	if err := googleapi.CheckResponse(resp); err != nil {
		return nil, wrapError(err)
	}

	var out []*fs.RunQueryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: bad query response: %v", docstore.ErrUnavailable, err)
	}
	return out, nil
}

// Commit implements docstore.Store.
func (c *Client) Commit(ctx context.Context, writes []docstore.Write) (time.Time, error) {
	out := make([]*fs.Write, 0, len(writes))
	for _, w := range writes {
		fw, err := c.write(w)
		if err != nil {
			return time.Time{}, err
		}
		out = append(out, fw)
	}
	return c.commit(ctx, out)
}

func (c *Client) commit(ctx context.Context, writes []*fs.Write) (time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	resp, err := c.docs.Commit(c.database, &fs.CommitRequest{Writes: writes}).Context(ctx).Do()
	if err != nil {
		return time.Time{}, wrapError(err)
	}
	c.log.Debug("firestore commit", "writes", len(writes))

	at, err := time.Parse(time.RFC3339Nano, resp.CommitTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad commit time %q", docstore.ErrUnavailable, resp.CommitTime)
	}
	return at, nil
}

// write converts a batched write. ServerTimestamp fields become
// REQUEST_TIME transforms; updates carry a field mask and require the
// document to exist.
func (c *Client) write(w docstore.Write) (*fs.Write, error) {
	name := c.name(w.Collection, w.ID)
	if w.Op == docstore.OpDelete {
		return &fs.Write{Delete: name}, nil
	}

	doc := &fs.Document{Name: name, Fields: make(map[string]fs.Value)}
	var mask, transformed []string
	for k, v := range w.Fields {
		if docstore.IsServerTimestamp(v) {
			transformed = append(transformed, k)
			continue
		}
		val, err := toValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", k, err)
		}
		doc.Fields[k] = val
		mask = append(mask, k)
	}
	sort.Strings(mask)
	sort.Strings(transformed)

	fw := &fs.Write{Update: doc}
	for _, k := range transformed {
		fw.UpdateTransforms = append(fw.UpdateTransforms, &fs.FieldTransform{FieldPath: k, SetToServerValue: serverTime})
	}
	if w.Op == docstore.OpUpdate {
		fw.UpdateMask = &fs.DocumentMask{FieldPaths: mask}
		fw.CurrentDocument = &fs.Precondition{Exists: true}
	}
	return fw, nil
}

func toValue(v any) (fs.Value, error) {
	switch v := v.(type) {
	case nil:
		return fs.Value{NullValue: "NULL_VALUE"}, nil
	case string:
		return fs.Value{StringValue: v, ForceSendFields: []string{"StringValue"}}, nil
	case bool:
		return fs.Value{BooleanValue: v, ForceSendFields: []string{"BooleanValue"}}, nil
	case int:
		return fs.Value{IntegerValue: int64(v), ForceSendFields: []string{"IntegerValue"}}, nil
	case int64:
		return fs.Value{IntegerValue: v, ForceSendFields: []string{"IntegerValue"}}, nil
	case float64:
		return fs.Value{DoubleValue: v, ForceSendFields: []string{"DoubleValue"}}, nil
	case time.Time:
		return fs.Value{TimestampValue: v.UTC().Format(time.RFC3339Nano)}, nil
	}
	return fs.Value{}, fmt.Errorf("unsupported value %T", v)
}

// fromValue decodes a value. Zero values are indistinguishable after
// decoding and come back as nil; typed accessors on docstore.Doc read nil
// as the zero value.
func fromValue(v fs.Value) (any, error) {
	switch {
	case v.StringValue != "":
		return v.StringValue, nil
	case v.BooleanValue:
		return true, nil
	case v.IntegerValue != 0:
		return v.IntegerValue, nil
	case v.DoubleValue != 0:
		return v.DoubleValue, nil
	case v.TimestampValue != "":
		t, err := time.Parse(time.RFC3339Nano, v.TimestampValue)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	return nil, nil
}

func fromDocument(d *fs.Document) (docstore.Doc, error) {
	id := d.Name[strings.LastIndex(d.Name, "/")+1:]
	fields := make(docstore.Fields, len(d.Fields))
	for k, v := range d.Fields {
		val, err := fromValue(v)
		if err != nil {
			return docstore.Doc{}, fmt.Errorf("document %s field %s: %w", id, k, err)
		}
		fields[k] = val
	}
	return docstore.Doc{ID: id, Fields: fields}, nil
}

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func autoID() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate id: %w", err)
	}
	for i := range b {
		b[i] = idAlphabet[int(b[i])%len(idAlphabet)]
	}
	return string(b), nil
}

// wrapError maps API errors to docstore errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", docstore.ErrUnavailable)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", docstore.ErrNotFound, apiErr.Message)
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: token expired or revoked (run: vtask login)", docstore.ErrUnauthorized)
		}
	}
	return fmt.Errorf("%w: %w", docstore.ErrUnavailable, err)
}

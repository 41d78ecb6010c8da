// Package vfsearch is a permission-aware full-text search index for
// hierarchical content stores, backed by Redis FT. Reads run a single
// over-fetched ranked query and filter hits per principal; writes go
// through a buffered writer that publishes at commit.
package vfsearch

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/cairnforge/vfsearch/internal/db"
	dbredis "github.com/cairnforge/vfsearch/internal/db/redis"
	"github.com/cairnforge/vfsearch/internal/domain"
	"github.com/cairnforge/vfsearch/internal/extract"
	"github.com/cairnforge/vfsearch/internal/fields"
	"github.com/cairnforge/vfsearch/internal/locale"
	docrepo "github.com/cairnforge/vfsearch/internal/repository/document"
	idxrepo "github.com/cairnforge/vfsearch/internal/repository/index"
	resrepo "github.com/cairnforge/vfsearch/internal/repository/resource"
	searchrepo "github.com/cairnforge/vfsearch/internal/repository/search"
	indexeruc "github.com/cairnforge/vfsearch/internal/usecase/indexer"
	searchuc "github.com/cairnforge/vfsearch/internal/usecase/search"
)

// PlainTextType is the resource type served by the built-in factory.
const PlainTextType = "plain"

// Config holds the settings of one Index.
type Config struct {
	Addrs    []string
	Username string
	Password string

	IndexName      string
	KeyPrefix      string
	BackupPrefix   string
	Backup         bool
	ResourcePrefix string
	MaxRows        int

	// Locales use the underscore form. DefaultLocale must be one of
	// AvailableLocales; it is assumed for resources without a locale
	// signal of their own.
	AvailableLocales []string
	DefaultLocale    string

	Fields []FieldDefinition
}

func (c *Config) applyDefaults() {
	if c.IndexName == "" {
		c.IndexName = "vfsearch"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "vfsearch:doc:"
	}
	if c.BackupPrefix == "" {
		c.BackupPrefix = "vfsearch:backup:"
	}
	if c.ResourcePrefix == "" {
		c.ResourcePrefix = "vfsearch:res:"
	}
	if c.MaxRows <= 0 {
		c.MaxRows = searchuc.DefaultMaxRows
	}
	if len(c.AvailableLocales) == 0 {
		c.AvailableLocales = []string{"en"}
	}
	if c.DefaultLocale == "" {
		c.DefaultLocale = c.AvailableLocales[0]
	}
}

// Index is the embeddable facade over the read and write paths.
// Searches run concurrently under a read lock; write batches and
// rebuilds are exclusive.
type Index struct {
	mu sync.RWMutex

	cfg       Config
	store     db.Store
	log       *zap.Logger
	available []language.Tag
	defaults  []language.Tag

	resolver  *locale.Resolver
	mapper    *fields.Mapper
	registry  *extract.Registry
	resources *resrepo.Repo
	documents *docrepo.Repo
	oracle    PermissionOracle
	search    *searchuc.Service

	extraFactories map[string]DocumentFactory
}

// New connects to the store and builds the full pipeline. The returned
// Index owns the connection; call Close when done.
func New(cfg Config, opts ...Option) (*Index, error) {
	cfg.applyDefaults()

	ix := &Index{
		cfg:            cfg,
		log:            zap.NewNop(),
		extraFactories: make(map[string]DocumentFactory),
	}
	for _, opt := range opts {
		opt(ix)
	}

	for _, l := range cfg.AvailableLocales {
		tag, err := locale.Parse(l)
		if err != nil {
			return nil, err
		}
		ix.available = append(ix.available, tag)
	}
	defaultTag, err := locale.Parse(cfg.DefaultLocale)
	if err != nil {
		return nil, err
	}
	ix.defaults = []language.Tag{defaultTag}

	defs := make([]fields.Definition, 0, len(cfg.Fields))
	for _, f := range cfg.Fields {
		def, err := f.toInternal()
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	fieldCfg, err := fields.NewConfiguration(ix.available, defs)
	if err != nil {
		return nil, err
	}

	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("connect store: %w", err)
	}
	ix.store = store

	ix.resolver = locale.NewResolver(ix.available)
	ix.mapper = fields.NewMapper(fieldCfg, ix.resolver, ix.log)

	ix.registry = extract.NewRegistry()
	ix.registry.Register(PlainTextType, extract.Plaintext{})
	for typ, f := range ix.extraFactories {
		ix.registry.Register(typ, &factoryAdapter{inner: f})
	}

	ix.resources = resrepo.New(store, cfg.ResourcePrefix)
	ix.documents = docrepo.New(store, cfg.IndexName, cfg.KeyPrefix)
	if ix.oracle == nil {
		ix.oracle = ix.resources
	}

	ix.search = searchuc.New(
		searchrepo.New(store, cfg.IndexName, cfg.KeyPrefix),
		ix.resources, ix.oracle, cfg.MaxRows, ix.log,
	)

	return ix, nil
}

// EnsureIndex creates the FT index if it does not exist yet.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	exists, err := ix.store.IndexExists(ctx, ix.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}
	if err := ix.store.CreateIndex(ctx, ix.indexDefinition()); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	ix.log.Info("search index created", zap.String("index", ix.cfg.IndexName))
	return nil
}

// Search runs one permission-filtered paginated query as the given
// principal.
func (ix *Index) Search(ctx context.Context, principal string, q *Query) (*ResultPage, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	page, err := ix.search.Search(ctx, principal, q.toDomain())
	if err != nil {
		return nil, err
	}
	return pageFromDomain(page), nil
}

// Document returns the indexed document whose field equals value.
// Supported fields are the stored document fields, "path" being the
// cheap direct lookup.
func (ix *Index) Document(ctx context.Context, field, value string) (*Document, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	doc, err := ix.documents.GetByField(ctx, field, value)
	if err != nil {
		return nil, err
	}
	return documentFromDomain(doc), nil
}

// PutResource stores a resource and its reader access list in the
// resource store. It does not index the resource.
func (ix *Index) PutResource(ctx context.Context, res *Resource, readers []string) error {
	return ix.resources.Put(ctx, res.toDomain(), readers)
}

// Resource returns a stored resource by ID.
func (ix *Index) Resource(ctx context.Context, id string) (*Resource, error) {
	res, err := ix.resources.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	return resourceFromDomain(res), nil
}

// IndexResources extracts and indexes a batch, publishing it with a
// single commit.
func (ix *Index) IndexResources(ctx context.Context, resources []*Resource) (*Report, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.indexBatch(ctx, resources, false)
}

// Rebuild wipes the index (after the optional backup snapshot) and
// reindexes the given resources from scratch.
func (ix *Index) Rebuild(ctx context.Context, resources []*Resource) (*Report, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.indexBatch(ctx, resources, true)
}

// DeleteResources removes indexed documents by path prefix. A prefix
// removes the document at that exact path and everything below it as a
// path segment.
func (ix *Index) DeleteResources(ctx context.Context, pathPrefixes []string) (*Report, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	writer, err := ix.openWriter(ctx, false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = writer.Close() }()

	svc := indexeruc.New(ix.registry, ix.mapper, writer, ix.defaults, ix.log)
	rep, err := svc.DeleteResources(ctx, pathPrefixes)
	if err != nil {
		return nil, err
	}
	return &Report{Deleted: rep.Deleted}, nil
}

// Ping checks store connectivity.
func (ix *Index) Ping(ctx context.Context) error {
	return ix.store.Ping(ctx)
}

// Close releases the store connection.
func (ix *Index) Close() {
	ix.store.Close()
}

func (ix *Index) indexBatch(ctx context.Context, resources []*Resource, create bool) (*Report, error) {
	writer, err := ix.openWriter(ctx, create)
	if err != nil {
		return nil, err
	}
	defer func() { _ = writer.Close() }()

	batch := make([]*domain.Resource, len(resources))
	for i, r := range resources {
		batch[i] = r.toDomain()
	}

	svc := indexeruc.New(ix.registry, ix.mapper, writer, ix.defaults, ix.log)
	rep, err := svc.IndexResources(ctx, batch)
	if err != nil {
		return nil, err
	}
	return &Report{Indexed: rep.Indexed, Skipped: rep.Skipped}, nil
}

func (ix *Index) openWriter(ctx context.Context, create bool) (*idxrepo.Writer, error) {
	return idxrepo.Open(ctx, ix.store, idxrepo.Config{
		KeyPrefix:    ix.cfg.KeyPrefix,
		BackupPrefix: ix.cfg.BackupPrefix,
		Backup:       ix.cfg.Backup,
	}, create, ix.log)
}

// indexDefinition builds the FT schema: every configured text field
// with its weight, the structural fields, and the per-document boost
// as the index score field.
func (ix *Index) indexDefinition() *db.IndexDefinition {
	def := &db.IndexDefinition{
		Name:       ix.cfg.IndexName,
		Prefixes:   []string{ix.cfg.KeyPrefix},
		ScoreField: fields.FieldBoost,
		Fields: []db.IndexField{
			{Name: fields.FieldID, Type: db.IndexFieldTag},
			{Name: fields.FieldPath, Type: db.IndexFieldTag, Sortable: true},
			{Name: fields.FieldType, Type: db.IndexFieldTag},
			{Name: fields.FieldDateCreated, Type: db.IndexFieldNumeric, Sortable: true},
			{Name: fields.FieldDateModified, Type: db.IndexFieldNumeric, Sortable: true},
			{Name: fields.FieldResourceLocales, Type: db.IndexFieldTag, TagSeparator: " "},
			{Name: fields.FieldContentLocales, Type: db.IndexFieldTag, TagSeparator: " "},
			{Name: fields.FieldContent, Type: db.IndexFieldText},
		},
	}
	for _, t := range ix.available {
		def.Fields = append(def.Fields, db.IndexField{
			Name: fields.ContentFieldName(t),
			Type: db.IndexFieldText,
		})
	}
	for _, f := range ix.cfg.Fields {
		def.Fields = append(def.Fields, db.IndexField{
			Name:   f.Name,
			Type:   db.IndexFieldText,
			Weight: f.Weight,
		})
	}
	return def
}

// factoryAdapter bridges the public DocumentFactory to the internal
// extraction contract.
type factoryAdapter struct {
	inner DocumentFactory
}

func (a *factoryAdapter) Extract(ctx context.Context, res *domain.Resource) (*fields.ExtractionResult, error) {
	out, err := a.inner.Extract(ctx, resourceFromDomain(res))
	if err != nil {
		return nil, err
	}
	return out.toInternal()
}

package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/folio/blog/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ domain.RemotePostStore = (*MongoPostStore)(nil)

// MongoPostStore implements domain.RemotePostStore on a MongoDB collection.
// Timestamps are stored as native BSON dates.
type MongoPostStore struct {
	coll *mongo.Collection
}

// NewMongoPostStore wraps the posts collection
func NewMongoPostStore(coll *mongo.Collection) *MongoPostStore {
	return &MongoPostStore{coll: coll}
}

// EnsureIndexes creates the indexes used by the listing queries
func (s *MongoPostStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "publishedAt", Value: -1}}},
		{Keys: bson.D{{Key: "isPublished", Value: 1}, {Key: "publishedAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create post indexes: %w", err)
	}
	return nil
}

var byPublishedDesc = options.Find().SetSort(bson.D{{Key: "publishedAt", Value: -1}})

// FindAll returns every post, newest first
func (s *MongoPostStore) FindAll(ctx context.Context) ([]*domain.Post, error) {
	return s.find(ctx, bson.D{})
}

// FindPublished returns published posts, newest first
func (s *MongoPostStore) FindPublished(ctx context.Context) ([]*domain.Post, error) {
	return s.find(ctx, bson.D{{Key: "isPublished", Value: true}})
}

func (s *MongoPostStore) find(ctx context.Context, filter bson.D) ([]*domain.Post, error) {
	cur, err := s.coll.Find(ctx, filter, byPublishedDesc)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer cur.Close(ctx)

	var docs []postDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]*domain.Post, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toDomain())
	}
	return posts, nil
}

// FindByID returns nil when the post does not exist or the id is not an ObjectID
func (s *MongoPostStore) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc postDocument
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}
	return doc.toDomain(), nil
}

// Insert stores a new document and returns its hex ObjectID
func (s *MongoPostStore) Insert(ctx context.Context, p *domain.Post) (string, error) {
	if p == nil {
		return "", fmt.Errorf("post cannot be nil")
	}

	doc := fromDomain(p)
	doc.ID = primitive.NilObjectID

	res, err := s.coll.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to insert post: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

// Update applies the patch with $set/$unset and stamps updatedAt
func (s *MongoPostStore) Update(ctx context.Context, id string, patch domain.PostPatch, updatedAt time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: oid}}, patchUpdate(patch, updatedAt))
	if err != nil {
		return fmt.Errorf("failed to update post %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

// Delete removes the document
func (s *MongoPostStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return nil
}

// postDocument is the remote record layout. Secondary-language fields carry a Jp
// suffix and are omitted when empty.
type postDocument struct {
	ID primitive.ObjectID `bson:"_id,omitempty"`

	Title           string   `bson:"title"`
	Subtitle        string   `bson:"subtitle"`
	Content         string   `bson:"content"`
	Excerpt         string   `bson:"excerpt"`
	Categories      []string `bson:"categories"`
	Tags            []string `bson:"tags"`
	MetaTitle       string   `bson:"metaTitle"`
	MetaDescription string   `bson:"metaDescription"`

	TitleJp           string   `bson:"titleJp,omitempty"`
	SubtitleJp        string   `bson:"subtitleJp,omitempty"`
	ContentJp         string   `bson:"contentJp,omitempty"`
	ExcerptJp         string   `bson:"excerptJp,omitempty"`
	CategoriesJp      []string `bson:"categoriesJp,omitempty"`
	TagsJp            []string `bson:"tagsJp,omitempty"`
	MetaTitleJp       string   `bson:"metaTitleJp,omitempty"`
	MetaDescriptionJp string   `bson:"metaDescriptionJp,omitempty"`

	IsPublished bool `bson:"isPublished"`
	IsDraft     bool `bson:"isDraft"`
	Featured    bool `bson:"featured"`
	ReadingTime int  `bson:"readingTime"`
	Bookmarked  bool `bson:"bookmarked"`

	PublishedAt primitive.DateTime `bson:"publishedAt"`
	UpdatedAt   primitive.DateTime `bson:"updatedAt"`

	Author authorDocument `bson:"author"`
}

type authorDocument struct {
	Name   string `bson:"name"`
	Avatar string `bson:"avatar,omitempty"`
}

func toDateTime(ts domain.Timestamp) primitive.DateTime {
	return primitive.NewDateTimeFromTime(ts.Time())
}

// fromDateTime maps the zero date written for an empty timestamp back to empty.
func fromDateTime(dt primitive.DateTime) domain.Timestamp {
	t := dt.Time()
	if t.IsZero() {
		return ""
	}
	return domain.NewTimestamp(t)
}

func fromDomain(p *domain.Post) postDocument {
	doc := postDocument{
		Title:           p.Primary.Title,
		Subtitle:        p.Primary.Subtitle,
		Content:         p.Primary.Content,
		Excerpt:         p.Primary.Excerpt,
		Categories:      nonNil(p.Primary.Categories),
		Tags:            nonNil(p.Primary.Tags),
		MetaTitle:       p.Primary.MetaTitle,
		MetaDescription: p.Primary.MetaDescription,
		IsPublished:     p.IsPublished,
		IsDraft:         p.IsDraft,
		Featured:        p.Featured,
		ReadingTime:     p.ReadingTime,
		Bookmarked:      p.Bookmarked,
		PublishedAt:     toDateTime(p.PublishedAt),
		UpdatedAt:       toDateTime(p.UpdatedAt),
		Author:          authorDocument{Name: p.Author.Name, Avatar: p.Author.Avatar},
	}

	if oid, err := primitive.ObjectIDFromHex(p.ID); err == nil {
		doc.ID = oid
	}

	if s := p.Secondary; s != nil {
		doc.TitleJp = s.Title
		doc.SubtitleJp = s.Subtitle
		doc.ContentJp = s.Content
		doc.ExcerptJp = s.Excerpt
		doc.CategoriesJp = s.Categories
		doc.TagsJp = s.Tags
		doc.MetaTitleJp = s.MetaTitle
		doc.MetaDescriptionJp = s.MetaDescription
	}
	return doc
}

func (d *postDocument) toDomain() *domain.Post {
	p := &domain.Post{
		Primary: domain.LocalizedFields{
			Title:           d.Title,
			Subtitle:        d.Subtitle,
			Content:         d.Content,
			Excerpt:         d.Excerpt,
			Categories:      nonNil(d.Categories),
			Tags:            nonNil(d.Tags),
			MetaTitle:       d.MetaTitle,
			MetaDescription: d.MetaDescription,
		},
		IsPublished: d.IsPublished,
		IsDraft:     d.IsDraft,
		Featured:    d.Featured,
		ReadingTime: d.ReadingTime,
		Bookmarked:  d.Bookmarked,
		PublishedAt: fromDateTime(d.PublishedAt),
		UpdatedAt:   fromDateTime(d.UpdatedAt),
		Author:      domain.Author{Name: d.Author.Name, Avatar: d.Author.Avatar},
	}
	if !d.ID.IsZero() {
		p.ID = d.ID.Hex()
	}

	secondary := domain.LocalizedFields{
		Title:           d.TitleJp,
		Subtitle:        d.SubtitleJp,
		Content:         d.ContentJp,
		Excerpt:         d.ExcerptJp,
		Categories:      d.CategoriesJp,
		Tags:            d.TagsJp,
		MetaTitle:       d.MetaTitleJp,
		MetaDescription: d.MetaDescriptionJp,
	}
	if !secondary.IsEmpty() {
		p.Secondary = &secondary
	}
	return p
}

// patchUpdate builds the update document for a typed patch
func patchUpdate(patch domain.PostPatch, updatedAt time.Time) bson.D {
	set := bson.D{{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(updatedAt)}}
	unset := bson.D{}

	add := func(key string, v any) { set = append(set, bson.E{Key: key, Value: v}) }

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Subtitle != nil {
		add("subtitle", *patch.Subtitle)
	}
	if patch.Content != nil {
		add("content", *patch.Content)
	}
	if patch.Excerpt != nil {
		add("excerpt", *patch.Excerpt)
	}
	if patch.Categories != nil {
		add("categories", nonNil(*patch.Categories))
	}
	if patch.Tags != nil {
		add("tags", nonNil(*patch.Tags))
	}
	if patch.MetaTitle != nil {
		add("metaTitle", *patch.MetaTitle)
	}
	if patch.MetaDescription != nil {
		add("metaDescription", *patch.MetaDescription)
	}
	if s := patch.Secondary; s != nil {
		fields := []struct {
			key   string
			value any
			empty bool
		}{
			{"titleJp", s.Title, s.Title == ""},
			{"subtitleJp", s.Subtitle, s.Subtitle == ""},
			{"contentJp", s.Content, s.Content == ""},
			{"excerptJp", s.Excerpt, s.Excerpt == ""},
			{"categoriesJp", s.Categories, len(s.Categories) == 0},
			{"tagsJp", s.Tags, len(s.Tags) == 0},
			{"metaTitleJp", s.MetaTitle, s.MetaTitle == ""},
			{"metaDescriptionJp", s.MetaDescription, s.MetaDescription == ""},
		}
		for _, f := range fields {
			if f.empty {
				unset = append(unset, bson.E{Key: f.key, Value: ""})
			} else {
				add(f.key, f.value)
			}
		}
	}
	if patch.IsPublished != nil {
		add("isPublished", *patch.IsPublished)
		add("isDraft", !*patch.IsPublished)
	}
	if patch.Featured != nil {
		add("featured", *patch.Featured)
	}
	if patch.ReadingTime != nil {
		add("readingTime", *patch.ReadingTime)
	}
	if patch.PublishedAt != nil {
		add("publishedAt", toDateTime(*patch.PublishedAt))
	}
	if patch.Author != nil {
		add("author", authorDocument{Name: patch.Author.Name, Avatar: patch.Author.Avatar})
	}
	if patch.Bookmarked != nil {
		add("bookmarked", *patch.Bookmarked)
	}

	update := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		update = append(update, bson.E{Key: "$unset", Value: unset})
	}
	return update
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

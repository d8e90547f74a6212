package search

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/olivere/elastic/v7"
	"github.com/pkg/errors"

	"ytgify.com/config"
)

// Document is the indexed view of a gif.
type Document struct {
	GifID             int64     `json:"gif_id"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	YoutubeVideoTitle string    `json:"youtube_video_title"`
	Username          string    `json:"username"`
	Hashtags          []string  `json:"hashtags"`
	Privacy           string    `json:"privacy"`
	LikeCount         int64     `json:"like_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// Engine indexes and queries gifs. A nil Default means no search engine is
// configured and callers fall back to the database.
type Engine interface {
	Index(ctx context.Context, doc *Document) error
	Delete(ctx context.Context, gifID int64) error
	Search(ctx context.Context, q string, offset, limit int) (ids []int64, total int64, err error)
}

var Default Engine

const mapping = `{
	"mappings": {
		"properties": {
			"gif_id":              {"type": "long"},
			"title":               {"type": "text"},
			"description":         {"type": "text"},
			"youtube_video_title": {"type": "text"},
			"username":            {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"hashtags":            {"type": "text", "fields": {"raw": {"type": "keyword"}}},
			"privacy":             {"type": "keyword"},
			"like_count":          {"type": "long"},
			"created_at":          {"type": "date"}
		}
	}
}`

type ElasticEngine struct {
	client *elastic.Client
	index  string
}

// Init connects to elasticsearch when urls are configured.
func Init(ctx context.Context) error {
	cfg := config.ConfigInfo.Elastic
	if len(cfg.URLs) == 0 {
		hlog.Info("elastic urls empty, search falls back to database")
		return nil
	}
	client, err := elastic.NewClient(
		elastic.SetURL(cfg.URLs...),
		elastic.SetSniff(false),
		elastic.SetHealthcheckInterval(30*time.Second),
	)
	if err != nil {
		return errors.WithMessage(err, "create elastic client")
	}
	e := &ElasticEngine{client: client, index: cfg.Index}
	if err = e.ensureIndex(ctx); err != nil {
		return err
	}
	Default = e
	hlog.Infof("Connect Elasticsearch Success, index %s", cfg.Index)
	return nil
}

func (e *ElasticEngine) ensureIndex(ctx context.Context) error {
	exists, err := e.client.IndexExists(e.index).Do(ctx)
	if err != nil {
		return errors.WithMessage(err, "check index")
	}
	if exists {
		return nil
	}
	if _, err = e.client.CreateIndex(e.index).BodyString(mapping).Do(ctx); err != nil {
		return errors.WithMessage(err, "create index")
	}
	return nil
}

func (e *ElasticEngine) Index(ctx context.Context, doc *Document) error {
	_, err := e.client.Index().
		Index(e.index).
		Id(strconv.FormatInt(doc.GifID, 10)).
		BodyJson(doc).
		Do(ctx)
	return errors.WithMessage(err, "index gif")
}

func (e *ElasticEngine) Delete(ctx context.Context, gifID int64) error {
	_, err := e.client.Delete().Index(e.index).Id(strconv.FormatInt(gifID, 10)).Do(ctx)
	if elastic.IsNotFound(err) {
		return nil
	}
	return errors.WithMessage(err, "delete gif from index")
}

func (e *ElasticEngine) Search(ctx context.Context, q string, offset, limit int) ([]int64, int64, error) {
	res, err := e.client.Search().
		Index(e.index).
		Query(BuildQuery(q)).
		From(offset).
		Size(limit).
		Do(ctx)
	if err != nil {
		return nil, 0, errors.WithMessage(err, "search gifs")
	}
	ids := make([]int64, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		id, err := strconv.ParseInt(hit.Id, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, res.TotalHits(), nil
}

// BuildQuery matches q across the text fields of public gifs. A leading '#'
// restricts the match to hashtags.
func BuildQuery(q string) elastic.Query {
	q = strings.TrimSpace(q)
	bq := elastic.NewBoolQuery().Filter(elastic.NewTermQuery("privacy", "public"))
	if strings.HasPrefix(q, "#") && len(q) > 1 {
		return bq.Must(elastic.NewTermQuery("hashtags.raw", strings.ToLower(q[1:])))
	}
	return bq.Must(
		elastic.NewMultiMatchQuery(q, "title^3", "description", "hashtags^2", "youtube_video_title", "username").
			Type("best_fields").
			Fuzziness("AUTO"),
	)
}

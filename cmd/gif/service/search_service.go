package service

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytgify.com/cmd/gif/dal/db"
	hashtagdb "ytgify.com/cmd/hashtag/dal/db"
	"ytgify.com/cmd/model"
	"ytgify.com/pkg/hashtag"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/search"
	"ytgify.com/pkg/utils"
)

type SearchService struct {
	ctx context.Context
}

func NewSearchService(ctx context.Context) *SearchService {
	return &SearchService{ctx: ctx}
}

// Search 配置了 elasticsearch 时走全文检索, 否则或检索失败时退回数据库 LIKE 查询
func (s *SearchService) Search(viewerID int64, q string, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	page, perPage = utils.NormalizePage(page, perPage)
	q = strings.TrimSpace(q)
	if q == "" {
		return model.NewPage([]*model.GifInfo{}, page, perPage, 0), nil
	}
	if search.Default != nil {
		ids, total, err := search.Default.Search(s.ctx, q, utils.Offset(page, perPage), perPage)
		if err == nil {
			items, err := NewGifService(s.ctx, nil).ByIDs(viewerID, ids)
			if err != nil {
				return nil, err
			}
			return model.NewPage(items, page, perPage, total), nil
		}
		hlog.CtxWarnf(s.ctx, "elastic search failed, falling back to database: %v", err)
	}

	if strings.HasPrefix(q, "#") {
		return s.byHashtag(viewerID, q, page, perPage)
	}
	// 公开 gif 才能被搜到
	return NewGifService(s.ctx, nil).List(viewerID, db.Filter{Query: q, OrderBy: db.OrderRecent}, page, perPage)
}

func (s *SearchService) byHashtag(viewerID int64, q string, page, perPage int) (*model.PageResult[*model.GifInfo], error) {
	name := hashtag.Normalize(q)
	if name == "" {
		return model.NewPage([]*model.GifInfo{}, page, perPage, 0), nil
	}
	h, err := hashtagdb.GetByName(s.ctx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NewPage([]*model.GifInfo{}, page, perPage, 0), nil
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetByName failed")
	}
	ids, total, err := hashtagdb.GifIDsByHashtag(s.ctx, h.ID, utils.Offset(page, perPage), perPage)
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GifIDsByHashtag failed")
	}
	items, err := NewGifService(s.ctx, nil).ByIDs(viewerID, ids)
	if err != nil {
		return nil, err
	}
	return model.NewPage(items, page, perPage, total), nil
}

// Indexer 根据 gif 事件维护搜索索引
type Indexer struct {
	engine search.Engine
}

func NewIndexer(engine search.Engine) *Indexer {
	return &Indexer{engine: engine}
}

func (i *Indexer) HandleGifEvent(ctx context.Context, event *mq.GifEvent) error {
	if i.engine == nil {
		return nil
	}
	if event.Type == mq.GifEventDeleted {
		return i.engine.Delete(ctx, event.GifID)
	}
	g, err := db.GetGif(ctx, event.GifID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 事件到达前已被删除
		return i.engine.Delete(ctx, event.GifID)
	}
	if err != nil {
		return errors.WithMessage(err, "dao.GetGif failed")
	}
	return i.engine.Index(ctx, Document(g))
}

// Document 转换为索引文档
func Document(g *model.Gif) *search.Document {
	doc := &search.Document{
		GifID:             g.ID,
		Title:             g.Title,
		Description:       g.Description,
		YoutubeVideoTitle: g.YoutubeVideoTitle,
		Hashtags:          make([]string, 0, len(g.Hashtags)),
		Privacy:           g.Privacy,
		LikeCount:         g.LikeCount,
		CreatedAt:         g.CreatedAt,
	}
	if g.User != nil {
		doc.Username = g.User.Username
	}
	for _, h := range g.Hashtags {
		doc.Hashtags = append(doc.Hashtags, h.Name)
	}
	return doc
}

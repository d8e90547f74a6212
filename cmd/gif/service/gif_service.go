package service

import (
	"context"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"ytgify.com/cmd/gif/dal/db"
	"ytgify.com/cmd/gif/infras/redis"
	interaction "ytgify.com/cmd/interaction/service"
	"ytgify.com/cmd/model"
	"ytgify.com/config"
	"ytgify.com/pkg/constants"
	"ytgify.com/pkg/errno"
	"ytgify.com/pkg/hashtag"
	"ytgify.com/pkg/metrics"
	"ytgify.com/pkg/mq"
	"ytgify.com/pkg/oss"
	"ytgify.com/pkg/utils"
)

const defaultMaxGifMB = 10

// Upload 上传的 gif 文件
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// GifMeta 创建 gif 时随文件提交的字段
type GifMeta struct {
	Title                 string   `json:"title"`
	Description           string   `json:"description"`
	Privacy               string   `json:"privacy"`
	YoutubeVideoURL       string   `json:"youtube_video_url"`
	YoutubeVideoTitle     string   `json:"youtube_video_title"`
	YoutubeChannelName    string   `json:"youtube_channel_name"`
	YoutubeTimestampStart *float64 `json:"youtube_timestamp_start"`
	YoutubeTimestampEnd   *float64 `json:"youtube_timestamp_end"`
	HasTextOverlay        bool     `json:"has_text_overlay"`
	TextOverlay           string   `json:"text_overlay"`
}

type UpdateGifRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Privacy     *string `json:"privacy"`
}

type GifService struct {
	ctx      context.Context
	producer mq.MessageProducer
}

func NewGifService(ctx context.Context, producer mq.MessageProducer) *GifService {
	if producer == nil {
		producer = mq.NopProducer{}
	}
	return &GifService{ctx: ctx, producer: producer}
}

func validPrivacy(p string) bool {
	return p == constants.PrivacyPublic || p == constants.PrivacyUnlisted || p == constants.PrivacyPrivate
}

func validateTitle(title string) error {
	if title == "" {
		return errno.ValidationErr.WithMessage("Title can't be blank")
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLen {
		return errno.ValidationErr.WithMessage("Title is too long (maximum is 100 characters)")
	}
	return nil
}

func validateDescription(desc string) error {
	if utf8.RuneCountInString(desc) > constants.MaxDescriptionLen {
		return errno.ValidationErr.WithMessage("Description is too long (maximum is 2000 characters)")
	}
	return nil
}

func (m *GifMeta) validate() error {
	m.Title = strings.TrimSpace(m.Title)
	m.Description = strings.TrimSpace(m.Description)
	if err := validateTitle(m.Title); err != nil {
		return err
	}
	if err := validateDescription(m.Description); err != nil {
		return err
	}
	if m.Privacy == "" {
		m.Privacy = constants.PrivacyPublic
	}
	if !validPrivacy(m.Privacy) {
		return errno.ValidationErr.WithMessage("Privacy must be public, unlisted or private")
	}
	if utf8.RuneCountInString(m.TextOverlay) > constants.MaxTextOverlayLen {
		return errno.ValidationErr.WithMessage("Text overlay is too long (maximum is 200 characters)")
	}
	start, end := m.YoutubeTimestampStart, m.YoutubeTimestampEnd
	if (start != nil && *start < 0) || (end != nil && *end < 0) {
		return errno.ValidationErr.WithMessage("Timestamps must be greater than or equal to 0")
	}
	if start != nil && end != nil && *end <= *start {
		return errno.ValidationErr.WithMessage("End timestamp must be after start timestamp")
	}
	return nil
}

func (u *Upload) validate() error {
	if u == nil || len(u.Data) == 0 {
		return errno.ValidationErr.WithMessage("File can't be blank")
	}
	maxMB := config.ConfigInfo.Upload.MaxGifMB
	if maxMB <= 0 {
		maxMB = defaultMaxGifMB
	}
	if int64(len(u.Data)) > maxMB<<20 {
		return errno.FileTooLargeErr
	}
	if http.DetectContentType(u.Data) != "image/gif" {
		return errno.FileTypeErr.WithMessage("File must be a GIF image")
	}
	return nil
}

func tagsOf(title, description string) []string {
	return hashtag.Extract(title + " " + description)
}

// Create 上传 gif
func (s *GifService) Create(userID int64, upload *Upload, meta *GifMeta) (*model.GifInfo, error) {
	return s.create(userID, nil, upload, meta)
}

// Remix 基于 parentID 创建二创 gif, 父 gif 必须对用户可见
func (s *GifService) Remix(userID, parentID int64, upload *Upload, meta *GifMeta) (*model.GifInfo, error) {
	parent, err := s.GetVisible(userID, parentID)
	if err != nil {
		return nil, err
	}
	return s.create(userID, parent, upload, meta)
}

func (s *GifService) create(userID int64, parent *model.Gif, upload *Upload, meta *GifMeta) (info *model.GifInfo, err error) {
	kind := "original"
	if parent != nil {
		kind = "remix"
	}
	defer func() {
		metrics.GifUploadsTotal.WithLabelValues(kind, metrics.Result(err)).Inc()
	}()

	if err = meta.validate(); err != nil {
		return nil, err
	}
	if err = upload.validate(); err != nil {
		return nil, err
	}

	id := utils.GenerateID().String()
	m, err := inspect(s.ctx, upload.Data, id)
	if err != nil {
		return nil, errno.FileTypeErr.WithMessage("File is not a readable GIF")
	}

	gifKey := oss.GifObjectName(userID, id)
	fileURL, err := oss.Store.PutBytes(s.ctx, gifKey, upload.Data, "image/gif")
	if err != nil {
		return nil, errors.WithMessage(err, "upload gif")
	}
	thumbKey := oss.ThumbnailObjectName(userID, id)
	thumbURL, err := oss.Store.PutBytes(s.ctx, thumbKey, m.thumbnail, "image/jpeg")
	if err != nil {
		s.removeObjects(gifKey)
		return nil, errors.WithMessage(err, "upload thumbnail")
	}

	g := &model.Gif{
		UserID:             userID,
		Title:              meta.Title,
		Description:        meta.Description,
		YoutubeVideoURL:    meta.YoutubeVideoURL,
		YoutubeVideoTitle:  meta.YoutubeVideoTitle,
		YoutubeChannelName: meta.YoutubeChannelName,
		Duration:           m.info.Duration,
		FPS:                m.info.FPS,
		Width:              m.info.Width,
		Height:             m.info.Height,
		Resolution:         m.info.Resolution(),
		FileSize:           int64(len(upload.Data)),
		FileURL:            fileURL,
		ThumbnailURL:       thumbURL,
		ObjectKey:          gifKey,
		Privacy:            meta.Privacy,
		HasTextOverlay:     meta.HasTextOverlay || meta.TextOverlay != "",
		TextOverlay:        meta.TextOverlay,
	}
	if meta.YoutubeTimestampStart != nil {
		g.YoutubeTimestampStart = *meta.YoutubeTimestampStart
	}
	if meta.YoutubeTimestampEnd != nil {
		g.YoutubeTimestampEnd = *meta.YoutubeTimestampEnd
	}
	if parent != nil {
		g.ParentGifID = &parent.ID
		g.IsRemix = true
	}

	if err = db.CreateGif(s.ctx, g, tagsOf(g.Title, g.Description)); err != nil {
		s.removeObjects(gifKey, thumbKey)
		return nil, errors.WithMessage(err, "dao.CreateGif failed")
	}
	hlog.CtxInfof(s.ctx, "user %d uploaded %s gif %d (%s, %d bytes)", userID, kind, g.ID, g.Resolution, g.FileSize)

	event := &mq.GifEvent{Type: mq.GifEventCreated, GifID: g.ID, UserID: userID}
	if parent != nil {
		event.ParentGifID = parent.ID
		event.ParentOwner = parent.UserID
	}
	mq.Report(s.ctx, mq.GifEventExchange, s.producer.PublishGifEvent(s.ctx, event))

	return s.Get(userID, g.ID)
}

func (s *GifService) removeObjects(keys ...string) {
	for _, k := range keys {
		if err := oss.Store.Remove(s.ctx, k); err != nil {
			hlog.CtxWarnf(s.ctx, "remove object %s failed: %v", k, err)
		}
	}
}

// GetVisible 读取 viewerID 可见的 gif. 私密 gif 对其他人表现为不存在
func (s *GifService) GetVisible(viewerID, id int64) (*model.Gif, error) {
	g, err := db.GetGif(s.ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errno.GifNotExistErr
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dao.GetGif failed")
	}
	if !g.VisibleTo(viewerID) {
		return nil, errno.GifNotExistErr
	}
	return g, nil
}

func (s *GifService) Get(viewerID, id int64) (*model.GifInfo, error) {
	g, err := s.GetVisible(viewerID, id)
	if err != nil {
		return nil, err
	}
	list, err := s.Decorate(viewerID, []*model.Gif{g})
	if err != nil {
		return nil, err
	}
	return list[0], nil
}

// Decorate 附加当前观看者的点赞状态
func (s *GifService) Decorate(viewerID int64, gifs []*model.Gif) ([]*model.GifInfo, error) {
	return interaction.NewLikeService(s.ctx, s.producer).Decorate(viewerID, gifs)
}

// Update 只有作者可以修改, 标题或描述变化时重建话题
func (s *GifService) Update(ownerID, id int64, req *UpdateGifRequest) (*model.GifInfo, error) {
	g, err := s.GetVisible(ownerID, id)
	if err != nil {
		return nil, err
	}
	if g.UserID != ownerID {
		return nil, errno.ForbiddenErr
	}

	updates := make(map[string]interface{})
	title, desc := g.Title, g.Description
	if req.Title != nil {
		title = strings.TrimSpace(*req.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		updates["title"] = title
	}
	if req.Description != nil {
		desc = strings.TrimSpace(*req.Description)
		if err := validateDescription(desc); err != nil {
			return nil, err
		}
		updates["description"] = desc
	}
	if req.Privacy != nil {
		if !validPrivacy(*req.Privacy) {
			return nil, errno.ValidationErr.WithMessage("Privacy must be public, unlisted or private")
		}
		updates["privacy"] = *req.Privacy
	}
	if len(updates) == 0 {
		return s.Get(ownerID, id)
	}

	var tags []string
	if req.Title != nil || req.Description != nil {
		tags = tagsOf(title, desc)
		if tags == nil {
			tags = []string{}
		}
	}
	if err := db.UpdateGif(s.ctx, id, updates, tags); err != nil {
		return nil, errors.WithMessage(err, "dao.UpdateGif failed")
	}
	if req.Privacy != nil && *req.Privacy != constants.PrivacyPublic {
		if err := redis.RemoveTrending(s.ctx, id); err != nil {
			hlog.CtxWarnf(s.ctx, "remove gif %d from trending failed: %v", id, err)
		}
	}
	mq.Report(s.ctx, mq.GifEventExchange, s.producer.PublishGifEvent(s.ctx, &mq.GifEvent{
		Type: mq.GifEventUpdated, GifID: id, UserID: ownerID,
	}))
	return s.Get(ownerID, id)
}

// Delete 软删除, 只有作者可以删除
func (s *GifService) Delete(ownerID, id int64) error {
	g, err := s.GetVisible(ownerID, id)
	if err != nil {
		return err
	}
	if g.UserID != ownerID {
		return errno.ForbiddenErr
	}
	if err := db.DeleteGif(s.ctx, g); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errno.GifNotExistErr
		}
		return errors.WithMessage(err, "dao.DeleteGif failed")
	}
	if err := redis.RemoveTrending(s.ctx, id); err != nil {
		hlog.CtxWarnf(s.ctx, "remove gif %d from trending failed: %v", id, err)
	}
	hlog.CtxInfof(s.ctx, "user %d deleted gif %d", ownerID, id)

	event := &mq.GifEvent{Type: mq.GifEventDeleted, GifID: id, UserID: ownerID}
	if g.ParentGifID != nil {
		event.ParentGifID = *g.ParentGifID
	}
	mq.Report(s.ctx, mq.GifEventExchange, s.producer.PublishGifEvent(s.ctx, event))
	return nil
}

// Share share_count +1
func (s *GifService) Share(viewerID, id int64) (int64, error) {
	if _, err := s.GetVisible(viewerID, id); err != nil {
		return 0, err
	}
	count, err := db.IncrShare(s.ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, errno.GifNotExistErr
	}
	if err != nil {
		return 0, errors.WithMessage(err, "dao.IncrShare failed")
	}
	return count, nil
}

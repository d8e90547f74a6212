package config

import (
	"fmt"
	"time"
)

type config struct {
	Server       server       `yaml:"server" mapstructure:"server"`
	Mysql        mysql        `yaml:"mysql" mapstructure:"mysql"`
	Redis        redis        `yaml:"redis" mapstructure:"redis"`
	RabbitMq     rabbitmq     `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	Minio        minio        `yaml:"minio" mapstructure:"minio"`
	Elastic      elastic      `yaml:"elastic" mapstructure:"elastic"`
	Jwt          jwt          `yaml:"jwt" mapstructure:"jwt"`
	Jaeger       jaeger       `yaml:"jaeger" mapstructure:"jaeger"`
	Trending     trending     `yaml:"trending" mapstructure:"trending"`
	RateLimit    rateLimit    `yaml:"ratelimit" mapstructure:"ratelimit"`
	Upload       upload       `yaml:"upload" mapstructure:"upload"`
	ViewSharding viewSharding `yaml:"view_sharding" mapstructure:"view_sharding"`
}

type server struct {
	Addr         string   `yaml:"addr"`
	WsAddr       string   `yaml:"ws_addr" mapstructure:"ws_addr"`
	AllowOrigins []string `yaml:"allow_origins" mapstructure:"allow_origins"`
	MaxBodyMB    int      `yaml:"max_body_mb" mapstructure:"max_body_mb"`
	PprofAddr    string   `yaml:"pprof_addr" mapstructure:"pprof_addr"`
	NodeID       int64    `yaml:"node_id" mapstructure:"node_id"`
	WorkerNodeID int64    `yaml:"worker_node_id" mapstructure:"worker_node_id"`
}

type mysql struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Charset  string `yaml:"charset"`
}

// DSN builds the go-sql-driver dsn for gorm.io/driver/mysql.
func (m mysql) DSN() string {
	charset := m.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=True&loc=Local",
		m.Username, m.Password, m.Addr, m.Database, charset)
}

type redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type rabbitmq struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Vhost    string `yaml:"vhost"`
}

func (r rabbitmq) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s/%s", r.Username, r.Password, r.Addr, r.Vhost)
}

type minio struct {
	Endpoint      string `yaml:"endpoint"`
	AccessKey     string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey     string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL        bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"public_base_url" mapstructure:"public_base_url"`
}

type elastic struct {
	URLs  []string `yaml:"urls"`
	Index string   `yaml:"index"`
}

type jwt struct {
	Secret     string        `yaml:"secret"`
	Realm      string        `yaml:"realm"`
	AccessTTL  time.Duration `yaml:"access_ttl" mapstructure:"access_ttl"`
	RefreshTTL time.Duration `yaml:"refresh_ttl" mapstructure:"refresh_ttl"`
}

type jaeger struct {
	Agent   string `yaml:"agent"`
	Service string `yaml:"service"`
}

type trending struct {
	WindowHours     int           `yaml:"window_hours" mapstructure:"window_hours"`
	RefreshInterval time.Duration `yaml:"refresh_interval" mapstructure:"refresh_interval"`
	Size            int           `yaml:"size"`
}

type rateLimit struct {
	LoginQPS     int64   `yaml:"login_qps" mapstructure:"login_qps"`
	RegisterQPS  int64   `yaml:"register_qps" mapstructure:"register_qps"`
	UploadQPS    int64   `yaml:"upload_qps" mapstructure:"upload_qps"`
	CommentQPS   int64   `yaml:"comment_qps" mapstructure:"comment_qps"`
	APIQPS       float64 `yaml:"api_qps" mapstructure:"api_qps"`
	CPUThreshold float64 `yaml:"cpu_threshold" mapstructure:"cpu_threshold"`
}

type upload struct {
	MaxGifMB    int64  `yaml:"max_gif_mb" mapstructure:"max_gif_mb"`
	MaxAvatarMB int64  `yaml:"max_avatar_mb" mapstructure:"max_avatar_mb"`
	TmpDir      string `yaml:"tmp_dir" mapstructure:"tmp_dir"`
}

type viewSharding struct {
	Shards uint `yaml:"shards"`
}

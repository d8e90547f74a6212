package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ConfigInfo config

// 使用Viper的好处在于支持配置文件的热更新 同时viper对于大小写并不敏感 都是统一进行处理
func Init() {
	wd, _ := os.Getwd()
	logrus.Infof("Current working directory: %s", wd)

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("config.yml")
	v.SetEnvPrefix("YTGIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	configPaths := []string{
		"../../config",
		"../../../config",
		"./config",
		"../config",
		".",
	}
	for _, path := range configPaths {
		v.AddConfigPath(path)
		absPath, _ := filepath.Abs(path)
		logrus.Debugf("Added config path: %s (absolute: %s)", path, absPath)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Warnf("config file not found, using defaults and environment: %v", err)
		} else {
			logrus.Errorf("config error: %v", err)
		}
	} else {
		logrus.Infof("Successfully read config file: %s", v.ConfigFileUsed())
	}

	Load(v)

	logrus.Infof("Config loaded - MySQL: %s:%s@%s/%s",
		ConfigInfo.Mysql.Username, "***", ConfigInfo.Mysql.Addr, ConfigInfo.Mysql.Database)
	logrus.Infof("Config loaded - Redis: %s db=%d, RabbitMQ: %s, MinIO: %s/%s",
		ConfigInfo.Redis.Addr, ConfigInfo.Redis.DB, ConfigInfo.RabbitMq.Addr,
		ConfigInfo.Minio.Endpoint, ConfigInfo.Minio.Bucket)
	if len(ConfigInfo.Elastic.URLs) == 0 {
		logrus.Warn("No elasticsearch urls configured, search falls back to SQL")
	}
	if ConfigInfo.Jwt.Secret == defaultJwtSecret {
		logrus.Warn("jwt.secret is the development default, set YTGIFY_JWT_SECRET in production")
	}
}

// Load copies values out of v into ConfigInfo. Values are read key by key
// instead of through Unmarshal so env overrides apply to nested keys.
func Load(v *viper.Viper) {
	ConfigInfo.Server.Addr = v.GetString("server.addr")
	ConfigInfo.Server.WsAddr = v.GetString("server.ws_addr")
	ConfigInfo.Server.AllowOrigins = v.GetStringSlice("server.allow_origins")
	ConfigInfo.Server.MaxBodyMB = v.GetInt("server.max_body_mb")
	ConfigInfo.Server.PprofAddr = v.GetString("server.pprof_addr")
	ConfigInfo.Server.NodeID = v.GetInt64("server.node_id")
	ConfigInfo.Server.WorkerNodeID = v.GetInt64("server.worker_node_id")

	ConfigInfo.Mysql.Addr = v.GetString("mysql.addr")
	ConfigInfo.Mysql.Database = v.GetString("mysql.database")
	ConfigInfo.Mysql.Username = v.GetString("mysql.username")
	ConfigInfo.Mysql.Password = v.GetString("mysql.password")
	ConfigInfo.Mysql.Charset = v.GetString("mysql.charset")

	ConfigInfo.Redis.Addr = v.GetString("redis.addr")
	ConfigInfo.Redis.Password = v.GetString("redis.password")
	ConfigInfo.Redis.DB = v.GetInt("redis.db")

	ConfigInfo.RabbitMq.Addr = v.GetString("rabbitmq.addr")
	ConfigInfo.RabbitMq.Username = v.GetString("rabbitmq.username")
	ConfigInfo.RabbitMq.Password = v.GetString("rabbitmq.password")
	ConfigInfo.RabbitMq.Vhost = v.GetString("rabbitmq.vhost")

	ConfigInfo.Minio.Endpoint = v.GetString("minio.endpoint")
	ConfigInfo.Minio.AccessKey = v.GetString("minio.access_key")
	ConfigInfo.Minio.SecretKey = v.GetString("minio.secret_key")
	ConfigInfo.Minio.UseSSL = v.GetBool("minio.use_ssl")
	ConfigInfo.Minio.Bucket = v.GetString("minio.bucket")
	ConfigInfo.Minio.PublicBaseURL = v.GetString("minio.public_base_url")

	ConfigInfo.Elastic.URLs = v.GetStringSlice("elastic.urls")
	ConfigInfo.Elastic.Index = v.GetString("elastic.index")

	ConfigInfo.Jwt.Secret = v.GetString("jwt.secret")
	ConfigInfo.Jwt.Realm = v.GetString("jwt.realm")
	ConfigInfo.Jwt.AccessTTL = v.GetDuration("jwt.access_ttl")
	ConfigInfo.Jwt.RefreshTTL = v.GetDuration("jwt.refresh_ttl")

	ConfigInfo.Jaeger.Agent = v.GetString("jaeger.agent")
	ConfigInfo.Jaeger.Service = v.GetString("jaeger.service")

	ConfigInfo.Trending.WindowHours = v.GetInt("trending.window_hours")
	ConfigInfo.Trending.RefreshInterval = v.GetDuration("trending.refresh_interval")
	ConfigInfo.Trending.Size = v.GetInt("trending.size")

	ConfigInfo.RateLimit.LoginQPS = v.GetInt64("ratelimit.login_qps")
	ConfigInfo.RateLimit.RegisterQPS = v.GetInt64("ratelimit.register_qps")
	ConfigInfo.RateLimit.UploadQPS = v.GetInt64("ratelimit.upload_qps")
	ConfigInfo.RateLimit.CommentQPS = v.GetInt64("ratelimit.comment_qps")
	ConfigInfo.RateLimit.APIQPS = v.GetFloat64("ratelimit.api_qps")
	ConfigInfo.RateLimit.CPUThreshold = v.GetFloat64("ratelimit.cpu_threshold")

	ConfigInfo.Upload.MaxGifMB = v.GetInt64("upload.max_gif_mb")
	ConfigInfo.Upload.MaxAvatarMB = v.GetInt64("upload.max_avatar_mb")
	ConfigInfo.Upload.TmpDir = v.GetString("upload.tmp_dir")

	ConfigInfo.ViewSharding.Shards = v.GetUint("view_sharding.shards")
}

const defaultJwtSecret = "ytgify-development-secret"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "0.0.0.0:8888")
	v.SetDefault("server.ws_addr", ":10000")
	v.SetDefault("server.allow_origins", []string{"http://localhost:3000", "chrome-extension://*"})
	v.SetDefault("server.max_body_mb", 32)
	// snowflake 节点号, 每个进程必须不同, 取值 0-1023
	v.SetDefault("server.node_id", 1)
	v.SetDefault("server.worker_node_id", 2)

	v.SetDefault("mysql.addr", "localhost:3306")
	v.SetDefault("mysql.database", "ytgify")
	v.SetDefault("mysql.username", "root")
	v.SetDefault("mysql.charset", "utf8mb4")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rabbitmq.addr", "localhost:5672")
	v.SetDefault("rabbitmq.username", "guest")
	v.SetDefault("rabbitmq.password", "guest")

	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.bucket", "ytgify")
	v.SetDefault("minio.public_base_url", "http://localhost:9000")

	v.SetDefault("elastic.index", "gifs")

	v.SetDefault("jwt.secret", defaultJwtSecret)
	v.SetDefault("jwt.realm", "ytgify")
	v.SetDefault("jwt.access_ttl", 15*time.Minute)
	v.SetDefault("jwt.refresh_ttl", 30*24*time.Hour)

	v.SetDefault("jaeger.service", "ytgify")

	v.SetDefault("trending.window_hours", 168)
	v.SetDefault("trending.refresh_interval", 5*time.Minute)
	v.SetDefault("trending.size", 500)

	v.SetDefault("ratelimit.login_qps", 5)
	v.SetDefault("ratelimit.register_qps", 2)
	v.SetDefault("ratelimit.upload_qps", 1)
	v.SetDefault("ratelimit.comment_qps", 3)
	v.SetDefault("ratelimit.api_qps", 2000)
	v.SetDefault("ratelimit.cpu_threshold", 90)

	v.SetDefault("upload.max_gif_mb", 10)
	v.SetDefault("upload.max_avatar_mb", 2)
	v.SetDefault("upload.tmp_dir", os.TempDir())

	v.SetDefault("view_sharding.shards", 0)
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// 支持的 Neo4j 连接协议。
var neo4jSchemes = []interface{}{"neo4j", "neo4j+s", "neo4j+ssc", "bolt", "bolt+s", "bolt+ssc"}

// identifierPattern 限制债务类别属性名只能是普通的 Cypher 标识符。
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Neo4jConfig 定义了 Neo4j 图数据库的连接配置。
type Neo4jConfig struct {
	Uri      string `yaml:"uri"`      // Neo4j 数据库URI (例如: "neo4j://localhost:7687")
	Username string `yaml:"username"` // 用户名
	Password string `yaml:"password"` // 密码
	Database string `yaml:"database"` // 数据库名称，为空时使用服务端默认库

	// 以下超时直接交给驱动，本层不做重试。
	SocketConnectTimeout         time.Duration `yaml:"socketConnectTimeout"`
	ConnectionAcquisitionTimeout time.Duration `yaml:"connectionAcquisitionTimeout"`
	MaxTransactionRetryTime      time.Duration `yaml:"maxTransactionRetryTime"`

	Breaker BreakerConfig `yaml:"breaker"` // 连接不可用时的熔断设置
}

// BreakerConfig 定义了查询熔断器的参数，零值使用默认值。
type BreakerConfig struct {
	FailureThreshold uint32        `yaml:"failureThreshold"`
	SuccessThreshold uint32        `yaml:"successThreshold"`
	OpenTimeout      time.Duration `yaml:"openTimeout"`
}

// Validate 校验 Neo4j 配置。
func (c *Neo4jConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Uri, validation.Required, validation.By(checkScheme)),
		validation.Field(&c.SocketConnectTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.ConnectionAcquisitionTimeout, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxTransactionRetryTime, validation.Min(time.Duration(0))),
		validation.Field(&c.Breaker),
	)
}

// Validate 校验熔断配置。
func (c BreakerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.OpenTimeout, validation.Min(time.Duration(0))),
	)
}

func checkScheme(value interface{}) error {
	raw, _ := value.(string)
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid uri: %w", err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("uri scheme is missing")
	}
	return validation.Validate(u.Scheme, validation.In(neo4jSchemes...).Error("unsupported uri scheme"))
}

// GraphConfig 定义了债务图查询相关的参数。
type GraphConfig struct {
	DetailProperty string `yaml:"detailProperty"` // HAS_DEBT 边上表示债务类别的属性名
	MaxJump        int    `yaml:"maxJump"`        // 环查询允许的最大边数
}

// Validate 校验图查询配置。
func (c *GraphConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DetailProperty, validation.Required, validation.Match(identifierPattern)),
		validation.Field(&c.MaxJump, validation.Required, validation.Min(2), validation.Max(32)),
	)
}

// DatabaseConfigs 包含所有数据库的配置。
type DatabaseConfigs struct {
	Neo4j Neo4jConfig `yaml:"neo4j"` // Neo4j 数据库配置
}

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`        // 应用程序名称
	Version     string `yaml:"version"`     // 应用程序版本
	Environment string `yaml:"environment"` // 运行环境 (例如: "development", "production")
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level"` // 日志级别 (例如: "info", "debug", "warn", "error")
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App       AppInfo         `yaml:"app"`       // 应用程序信息
	Logger    LoggerConfig    `yaml:"logger"`    // 日志记录器配置
	Databases DatabaseConfigs `yaml:"databases"` // 数据库配置
	Graph     GraphConfig     `yaml:"graph"`     // 图查询配置
}

// Validate 校验整个配置。
func (c *AppConfig) Validate() error {
	if err := c.Databases.Neo4j.Validate(); err != nil {
		return fmt.Errorf("databases.neo4j: %w", err)
	}
	if err := c.Graph.Validate(); err != nil {
		return fmt.Errorf("graph: %w", err)
	}
	return nil
}

// NewDefaultConfig 返回带有默认值的配置。
func NewDefaultConfig() *AppConfig {
	return &AppConfig{
		App: AppInfo{
			Name:        "debt-graph",
			Environment: "development",
		},
		Logger: LoggerConfig{Level: "info"},
		Databases: DatabaseConfigs{
			Neo4j: Neo4jConfig{
				Uri:                     "neo4j://localhost:7687",
				Username:                "neo4j",
				Database:                "neo4j",
				SocketConnectTimeout:    5 * time.Second,
				MaxTransactionRetryTime: 30 * time.Second,
				Breaker: BreakerConfig{
					FailureThreshold: 5,
					SuccessThreshold: 1,
					OpenTimeout:      10 * time.Second,
				},
			},
		},
		Graph: GraphConfig{
			DetailProperty: "detail",
			MaxJump:        8,
		},
	}
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
// 文件中的 ${VAR} 会先按环境变量展开，未出现的字段保留默认值。
//
// 参数:
//
//	path: YAML 配置文件的路径。
//
// 返回值:
//
//	*AppConfig: 解析并校验后的应用程序配置结构体。
//	error: 如果文件读取、解析或校验失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	cfg := NewDefaultConfig()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(yamlFile))), cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}

// Package neo4j 管理到 Neo4j 图数据库的进程级连接句柄。
//
// Handle 在进程启动时由 main 创建并初始化一次，之后以引用的方式传给所有查询组件。
// 并发安全依赖于驱动：neo4j.DriverWithContext 允许多个 goroutine 共享同一个实例并发提交查询，
// 本包只在初始化时加锁，查询路径上不持有任何锁。
package neo4j

import (
	"DebtGraph/backend/go/internal/apperr"
	"DebtGraph/backend/go/internal/config"
	"context"
	"fmt"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Handle 持有进程内唯一的 Neo4j 客户端。零值可直接使用，表示尚未初始化。
type Handle struct {
	mu     sync.RWMutex
	client *Client
	closed bool
}

// Init 创建驱动并验证连通性。成功后再次调用会返回 apperr.ErrAlreadyInitialized，
// Close 之后调用会返回 apperr.ErrClosed；失败时句柄保持未初始化状态。
func (h *Handle) Init(ctx context.Context, cfg *config.Neo4jConfig) error {
	if cfg == nil {
		return fmt.Errorf("%w: neo4j config is nil", apperr.ErrInvalidParameter)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return apperr.ErrClosed
	}
	if h.client != nil {
		return apperr.ErrAlreadyInitialized
	}

	client, err := NewClient(ctx, cfg)
	if err != nil {
		return err
	}
	h.client = client
	return nil
}

// Client 返回已初始化的客户端。未初始化时返回 apperr.ErrNotInitialized，
// 关闭后返回 apperr.ErrClosed。
func (h *Handle) Client() (*Client, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return nil, apperr.ErrClosed
	}
	if h.client == nil {
		return nil, apperr.ErrNotInitialized
	}
	return h.client, nil
}

// Close 关闭底层驱动并释放客户端。句柄关闭后不能重新初始化，重复调用 Close 不做任何事。
func (h *Handle) Close(ctx context.Context) error {
	h.mu.Lock()
	client := h.client
	h.client = nil
	h.closed = true
	h.mu.Unlock()
	if client == nil {
		return nil
	}
	return client.Close(ctx)
}

// Client 包含了 Neo4j 驱动实例和从 YAML 加载的相关配置。
type Client struct {
	Driver neo4j.DriverWithContext // Neo4j 驱动实例。
	Config *config.Neo4jConfig     // Neo4j 配置。
}

// NewClient 创建驱动实例并验证与数据库的连接。
func NewClient(ctx context.Context, cfg *config.Neo4jConfig) (*Client, error) {
	// 使用用户名和密码创建认证 token。
	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")

	driver, err := neo4j.NewDriverWithContext(cfg.Uri, auth, func(c *neo4j.Config) {
		if cfg.SocketConnectTimeout > 0 {
			c.SocketConnectTimeout = cfg.SocketConnectTimeout
		}
		if cfg.ConnectionAcquisitionTimeout > 0 {
			c.ConnectionAcquisitionTimeout = cfg.ConnectionAcquisitionTimeout
		}
		if cfg.MaxTransactionRetryTime > 0 {
			c.MaxTransactionRetryTime = cfg.MaxTransactionRetryTime
		}
	})
	if err != nil {
		return nil, fmt.Errorf("无法创建 Neo4j 驱动: %w", err)
	}

	// 验证与数据库的连接是否成功。
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx) // 如果验证失败，需要关闭已创建的驱动以释放资源。
		return nil, fmt.Errorf("%w: 无法连接到 Neo4j 数据库: %w", apperr.ErrBackendUnavailable, err)
	}

	return &Client{Driver: driver, Config: cfg}, nil
}

// Close 安全地关闭与 Neo4j 的连接。
func (c *Client) Close(ctx context.Context) error {
	if c.Driver == nil {
		return nil
	}
	if err := c.Driver.Close(ctx); err != nil {
		return fmt.Errorf("关闭 Neo4j 驱动失败: %w", err)
	}
	return nil
}

// HealthCheck 检查 Neo4j 连接的健康状况。
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.Driver.VerifyConnectivity(ctx); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrBackendUnavailable, err)
	}
	return nil
}

// Run 在读路由上执行一个 Cypher 查询，并把全部记录缓存在内存中返回。
// 连接类错误会被标记为 apperr.ErrBackendUnavailable，其余错误原样包装返回；本层不做重试。
func (c *Client) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	opts := []neo4j.ExecuteQueryConfigurationOption{neo4j.ExecuteQueryWithReadersRouting()}
	if c.Config != nil && c.Config.Database != "" {
		opts = append(opts, neo4j.ExecuteQueryWithDatabase(c.Config.Database))
	}

	result, err := neo4j.ExecuteQuery(ctx, c.Driver, query, params, neo4j.EagerResultTransformer, opts...)
	if err != nil {
		if neo4j.IsConnectivityError(err) {
			return nil, fmt.Errorf("%w: %w", apperr.ErrBackendUnavailable, err)
		}
		return nil, fmt.Errorf("failed to run Cypher read query: %w", err)
	}
	return result, nil
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/dep2p/go-rmseq/pkg/types"
)

// TestNewConfig 测试创建默认配置
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NotNil(t, cfg)

	// 验证默认配置有效
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, types.AtLeastOnce, cfg.Reliability.ToDeliveryAssurance())
	assert.True(t, cfg.Reliability.ToAckPolicy().IsImmediate())
	assert.Equal(t, 60*time.Second, cfg.Reliability.MonitorInterval.Duration())
	assert.Equal(t, 0.2, cfg.Reliability.MeasurementImpact)
	assert.Equal(t, 100*time.Millisecond, cfg.Destination.FlushInterval.Duration())
	assert.Equal(t, 1024, cfg.Destination.TerminatedCacheSize)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "rmseq", cfg.Metrics.Namespace)
}

// TestConfig_ValidateCombinesErrors 测试验证返回全部错误
func TestConfig_ValidateCombinesErrors(t *testing.T) {
	cfg := NewConfig()
	cfg.Reliability.MeasurementImpact = 0
	cfg.Destination.TerminatedCacheSize = 0
	cfg.Metrics.Namespace = "bad-name"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.Contains(t, err.Error(), "measurement_impact")
	assert.Contains(t, err.Error(), "terminated_cache_size")
	assert.Contains(t, err.Error(), "namespace")
}

// TestReliabilityConfig 测试可靠消息配置
func TestReliabilityConfig(t *testing.T) {
	t.Run("ExactlyOnce", func(t *testing.T) {
		cfg := DefaultReliabilityConfig()
		cfg.DeliveryAssurance = DeliveryAssuranceConfig{ExactlyOnce: true, InOrder: true}
		mode := cfg.ToDeliveryAssurance()
		assert.True(t, mode.Has(types.ExactlyOnce))
		assert.True(t, mode.Has(types.InOrder))
	})

	t.Run("NoAssurance", func(t *testing.T) {
		cfg := DefaultReliabilityConfig()
		cfg.DeliveryAssurance = DeliveryAssuranceConfig{}
		assert.Error(t, cfg.Validate())
	})

	t.Run("NegativeThreshold", func(t *testing.T) {
		cfg := DefaultReliabilityConfig().WithAcksPolicy(-1, 0)
		assert.Error(t, cfg.Validate())
	})

	t.Run("WithDeliveryAssurance", func(t *testing.T) {
		cfg := DefaultReliabilityConfig().WithDeliveryAssurance(types.AtMostOnce | types.InOrder)
		assert.Equal(t, types.AtMostOnce|types.InOrder, cfg.ToDeliveryAssurance())
	})

	t.Run("WithAcksPolicy", func(t *testing.T) {
		cfg := DefaultReliabilityConfig().WithAcksPolicy(50, time.Second)
		policy := cfg.ToAckPolicy()
		assert.Equal(t, 50, policy.IntraMessageThreshold)
		assert.Equal(t, time.Second, policy.AcknowledgementInterval)
		assert.False(t, policy.IsImmediate())
	})
}

// TestFromJSON 测试从 JSON 加载
func TestFromJSON(t *testing.T) {
	data := []byte(`{
		"reliability": {
			"delivery_assurance": {"exactly_once": true, "in_order": true},
			"acks_policy": {"intra_message_threshold": 100, "acknowledgement_interval": "200ms"}
		},
		"destination": {"flush_interval": "50ms"}
	}`)

	cfg, err := FromJSON(data)
	require.NoError(t, err)

	assert.Equal(t, types.ExactlyOnce|types.InOrder, cfg.Reliability.ToDeliveryAssurance())
	assert.Equal(t, 200*time.Millisecond, cfg.Reliability.AcksPolicy.AcknowledgementInterval.Duration())
	assert.Equal(t, 50*time.Millisecond, cfg.Destination.FlushInterval.Duration())
	// 未出现的字段保持默认值
	assert.Equal(t, 1024, cfg.Destination.TerminatedCacheSize)
	assert.Equal(t, 0.2, cfg.Reliability.MeasurementImpact)

	_, err = FromJSON([]byte(`{"reliability": {"monitor_interval": "soon"}}`))
	assert.Error(t, err)
}

// TestToJSON 测试序列化后可重新加载
func TestToJSON(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, ApplyPreset(cfg, "batched"))

	data, err := cfg.ToJSON()
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, string(data), `"acknowledgement_interval": "200ms"`)

	loaded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

// TestLoadFile 测试从文件加载
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"metrics": {"namespace": "wsrm"}}`), 0o600))
	cfg, err := LoadFile(good)
	require.NoError(t, err)
	assert.Equal(t, "wsrm", cfg.Metrics.Namespace)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"destination": {"terminated_cache_size": 0}}`), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)

	_, err = LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

// TestApplyPreset 测试预设
func TestApplyPreset(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, ApplyPreset(cfg, "batched"))
	assert.False(t, cfg.Reliability.ToAckPolicy().IsImmediate())
	assert.NoError(t, cfg.Validate())

	require.NoError(t, ApplyPreset(cfg, "immediate"))
	assert.True(t, cfg.Reliability.ToAckPolicy().IsImmediate())

	assert.NoError(t, ApplyPreset(cfg, ""))
	assert.Error(t, ApplyPreset(cfg, "unknown"))
	assert.Error(t, ApplyPreset(nil, "batched"))
}

// TestCloneConfig 测试克隆
func TestCloneConfig(t *testing.T) {
	assert.Nil(t, CloneConfig(nil))

	cfg := NewConfig()
	cloned := CloneConfig(cfg)
	cloned.Metrics.Namespace = "other"
	assert.Equal(t, "rmseq", cfg.Metrics.Namespace)
}

// TestValidateAndFix 测试自动修复
func TestValidateAndFix(t *testing.T) {
	cfg := NewConfig()
	cfg.Reliability.DeliveryAssurance = DeliveryAssuranceConfig{}
	cfg.Reliability.MonitorInterval = 0
	cfg.Reliability.MeasurementImpact = 2
	cfg.Destination.FlushInterval = -1
	cfg.Destination.TerminatedCacheSize = 0

	fixed, err := ValidateAndFix(cfg)
	require.NoError(t, err)
	assert.Equal(t, NewConfig(), fixed)

	fixed, err = ValidateAndFix(nil)
	require.NoError(t, err)
	assert.NotNil(t, fixed)

	assert.Error(t, ValidateAll(nil))
	assert.Panics(t, func() { MustValidate(nil) })
	assert.NotPanics(t, func() { MustValidate(NewConfig()) })
}

// TestDuration 测试 Duration 的 JSON 编解码
func TestDuration(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`1000000`), &d))
	assert.Equal(t, time.Millisecond, d.Duration())

	// 超过 2^53 的整数纳秒不丢精度
	require.NoError(t, json.Unmarshal([]byte(`9007199254740993`), &d))
	assert.Equal(t, time.Duration(9007199254740993), d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`"fast"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(2 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"2s"`, string(out))
	assert.Equal(t, "2s", Duration(2*time.Second).String())
}

// TestFromYAML 测试从 YAML 加载
func TestFromYAML(t *testing.T) {
	data := []byte(`
reliability:
  delivery_assurance:
    at_most_once: true
    in_order: true
  acks_policy:
    intra_message_threshold: 60
    acknowledgement_interval: 1s
  monitor_interval: 30000000000
metrics:
  enabled: false
`)
	cfg, err := FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, types.AtMostOnce|types.InOrder, cfg.Reliability.ToDeliveryAssurance())
	assert.Equal(t, time.Second, cfg.Reliability.AcksPolicy.AcknowledgementInterval.Duration())
	assert.Equal(t, 30*time.Second, cfg.Reliability.MonitorInterval.Duration())
	assert.False(t, cfg.Metrics.Enabled)
	// 未出现的字段保持默认值
	assert.Equal(t, 100*time.Millisecond, cfg.Destination.FlushInterval.Duration())

	_, err = FromYAML([]byte("destination:\n  flush_interval: later\n"))
	assert.Error(t, err)
}

// TestLoadFile_YAML 测试 YAML 文件与环境变量展开
func TestLoadFile_YAML(t *testing.T) {
	t.Setenv("RMSEQ_TEST_NAMESPACE", "wsrm")

	path := filepath.Join(t.TempDir(), "rmseq.yaml")
	require.NoError(t, os.WriteFile(path, []byte("metrics:\n  namespace: ${RMSEQ_TEST_NAMESPACE}\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "wsrm", cfg.Metrics.Namespace)
}

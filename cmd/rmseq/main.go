// Package main 提供 rmseq 命令行入口
//
// rmseq 回放一串消息号，按配置的投递保证投递并确认，
// 打印每条消息的判定结果、发出的确认帧与最终序列快照。
//
//	rmseq -stream 1,2,5,4,6 -assurance ExactlyOnce,InOrder -last 6
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-rmseq"
	"github.com/dep2p/go-rmseq/internal/util/logger"
	rmif "github.com/dep2p/go-rmseq/pkg/interfaces/rm"
	"github.com/dep2p/go-rmseq/pkg/types"
)

// Version 版本号
const Version = "v0.1.0"

var (
	configFile = flag.String("config", "", "配置文件路径")
	preset     = flag.String("preset", "", "预设配置 (immediate/batched)")
	assurance  = flag.String("assurance", "", "投递保证，例如 ExactlyOnce,InOrder（默认取配置）")
	stream     = flag.String("stream", "", "逗号分隔的消息号，例如 1,2,5,4,6")
	last       = flag.Uint64("last", 0, "最后消息号（0 = 不声明）")
	timeout    = flag.Duration("timeout", 5*time.Second, "回放超时")
	logLevel   = flag.String("log-level", "warn", "日志级别 (debug/info/warn/error)")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run(out io.Writer) error {
	flag.Parse()

	if *showVersion {
		fmt.Fprintf(out, "rmseq %s\n", Version)
		return nil
	}

	level, ok := logger.ParseLevel(*logLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", *logLevel)
	}
	logger.SetGlobalLevel(level)

	numbers, err := parseStream(*stream)
	if err != nil {
		return err
	}

	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	enc := json.NewEncoder(out)
	var encMu sync.Mutex
	emit := func(v any) {
		encMu.Lock()
		defer encMu.Unlock()
		_ = enc.Encode(v)
	}

	sender := rmif.AckSenderFunc(func(_ context.Context, acksTo types.EndpointReference, ack types.SequenceAcknowledgement) error {
		emit(ackEvent{Event: "ack", AcksTo: acksTo, Ack: ack})
		return nil
	})
	opts = append(opts, rmseq.WithAckSender(sender))

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ep, err := rmseq.Start(ctx, opts...)
	if err != nil {
		return err
	}
	defer ep.Close()

	snapshot, err := replay(ctx, ep, numbers, *last, emit)
	if err != nil {
		return err
	}
	emit(snapshot)
	return nil
}

// buildOptions 由命令行参数构建端点选项
func buildOptions() ([]rmseq.Option, error) {
	var opts []rmseq.Option
	if *configFile != "" {
		opts = append(opts, rmseq.WithConfigFile(*configFile))
	}
	if *preset != "" {
		opts = append(opts, rmseq.WithPreset(*preset))
	}
	if *assurance != "" {
		mode, err := types.ParseDeliveryAssurance(*assurance)
		if err != nil {
			return nil, err
		}
		opts = append(opts, rmseq.WithDeliveryAssurance(mode))
	}
	return opts, nil
}

// parseStream 解析逗号分隔的消息号
func parseStream(s string) ([]uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("-stream is required")
	}
	var numbers []uint64
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(field), 10, 64)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("invalid message number %q", field)
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              回放
// ════════════════════════════════════════════════════════════════════════════

type messageEvent struct {
	Event         string `json:"event"`
	MessageNumber uint64 `json:"message_number"`
	Error         string `json:"error,omitempty"`
}

type ackEvent struct {
	Event  string                        `json:"event"`
	AcksTo types.EndpointReference       `json:"acks_to"`
	Ack    types.SequenceAcknowledgement `json:"ack"`
}

type snapshotEvent struct {
	Event string                        `json:"event"`
	Ack   types.SequenceAcknowledgement `json:"ack"`
	Stats types.SequenceStats           `json:"stats"`
}

// replay 按顺序分发消息
//
// InOrder 模式下前驱尚未全部确认的消息在后台等待，分发器继续处理后续消息。
// 其余消息同步处理，保证重复判定与输入顺序一致。
func replay(ctx context.Context, ep *rmseq.Endpoint, numbers []uint64, lastMN uint64, emit func(any)) (snapshotEvent, error) {
	seq, err := ep.Destination().CreateSequence("urn:rmseq:replay")
	if err != nil {
		return snapshotEvent{}, err
	}

	if lastMN != 0 {
		if err := seq.SetLastMessageNumber(lastMN); err != nil {
			return snapshotEvent{}, err
		}
	}

	inOrder := ep.Config().Reliability.ToDeliveryAssurance().Has(types.InOrder)

	g, gctx := errgroup.WithContext(ctx)
	for _, n := range numbers {
		n := n
		if inOrder && !seq.AllPredecessorsAcknowledged(n) {
			g.Go(func() error { return dispatch(gctx, seq, n, emit) })
			continue
		}
		if err := dispatch(gctx, seq, n, emit); err != nil {
			return snapshotEvent{}, err
		}
	}
	if err := g.Wait(); err != nil {
		return snapshotEvent{}, err
	}

	if err := ep.Flush(ctx); err != nil {
		return snapshotEvent{}, err
	}

	return snapshotEvent{
		Event: "snapshot",
		Ack:   seq.Acknowledgement(),
		Stats: seq.Stats(),
	}, nil
}

// dispatch 判定、投递并确认一条消息
func dispatch(ctx context.Context, seq rmif.DestinationSequence, n uint64, emit func(any)) error {
	dup, err := seq.ApplyDeliveryAssurance(ctx, n)
	if err != nil {
		return fmt.Errorf("message %d: %w", n, err)
	}
	if dup {
		emit(messageEvent{Event: "duplicate", MessageNumber: n})
	} else {
		emit(messageEvent{Event: "deliver", MessageNumber: n})
	}
	// 重复消息也要确认，发送端可能没有收到上一次的确认帧
	return acknowledge(seq, n, emit)
}

func acknowledge(seq rmif.DestinationSequence, n uint64, emit func(any)) error {
	if err := seq.Acknowledge(n); err != nil {
		var fault *types.SequenceFault
		if errors.As(err, &fault) {
			emit(messageEvent{Event: "fault", MessageNumber: n, Error: string(fault.Code)})
			return nil
		}
		return fmt.Errorf("message %d: %w", n, err)
	}
	return nil
}

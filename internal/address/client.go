package address

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Client drives the external address parser executable. Single values are
// passed as arguments; bulk requests are exchanged through JSON temp files so
// batches of hundreds of addresses stay well under argv limits.
type Client struct {
	exe     string
	dataDir string
	log     *zap.Logger
}

// NewClient returns a client for the parser at exe, staging bulk files under
// dataDir.
func NewClient(exe, dataDir string, log *zap.Logger) *Client {
	return &Client{exe: exe, dataDir: dataDir, log: log}
}

var _ Normalizer = (*Client)(nil)

func (c *Client) Normalize(addr *string) (*string, error) {
	if isNull(addr) {
		return nil, nil
	}
	var out Normalized
	if err := c.run(&out, "normalize", *addr); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("address parser: %s", *out.Error)
	}
	return out.Normalized, nil
}

func (c *Client) NormalizeBulk(addrs []*string) ([]*string, error) {
	if len(addrs) == 0 {
		return nil, nil
	}
	file, cleanup, err := c.stage(addrs)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var out []Normalized
	if err := c.run(&out, "normalize_file", file); err != nil {
		return nil, err
	}
	if len(out) != len(addrs) {
		return nil, fmt.Errorf("address parser returned %d results for %d addresses",
			len(out), len(addrs))
	}
	normalized := make([]*string, len(out))
	for i, n := range out {
		normalized[i] = n.Normalized
	}
	return normalized, nil
}

func (c *Client) NormalizeCity(city, addr *string) (*string, error) {
	return c.normalizeComponent("normalize_city", city, addr)
}

func (c *Client) NormalizeState(state, addr *string) (*string, error) {
	return c.normalizeComponent("normalize_state", state, addr)
}

func (c *Client) normalizeComponent(task string, value, addr *string) (*string, error) {
	if isNull(value) && isNull(addr) {
		return nil, nil
	}
	var out Normalized
	if err := c.run(&out, task, orEmpty(value), orEmpty(addr)); err != nil {
		return nil, err
	}
	if out.Error != nil {
		return nil, fmt.Errorf("address parser: %s", *out.Error)
	}
	return out.Normalized, nil
}

func (c *Client) Compare(incoming, existing *string) (Comparison, error) {
	if isNull(incoming) && isNull(existing) {
		return nullComparison(), nil
	}
	if isNull(incoming) || isNull(existing) {
		norm, err := c.Normalize(existing)
		if err != nil {
			return Comparison{}, err
		}
		return Comparison{Match: MatchNone, Normalized: norm}, nil
	}
	var out Comparison
	if err := c.run(&out, "compare", *incoming, *existing); err != nil {
		return Comparison{}, err
	}
	return out, nil
}

func (c *Client) CompareBulk(incoming *string, existing []*string) ([]Comparison, error) {
	if len(existing) == 0 {
		return nil, nil
	}

	// With no incoming address there is nothing to compare against; each
	// pair degrades to a non-match carrying the existing side's canonical
	// form.
	if isNull(incoming) {
		norms, err := c.NormalizeBulk(existing)
		if err != nil {
			return nil, err
		}
		out := make([]Comparison, len(existing))
		for i := range existing {
			if isNull(existing[i]) {
				out[i] = nullComparison()
			} else {
				out[i] = Comparison{Match: MatchNone, Normalized: norms[i]}
			}
		}
		return out, nil
	}

	file, cleanup, err := c.stage(existing)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var out []Comparison
	if err := c.run(&out, "compare_file", *incoming, file); err != nil {
		return nil, err
	}
	if len(out) != len(existing) {
		c.log.Error("address parser bulk size mismatch",
			zap.Int("want", len(existing)),
			zap.Int("got", len(out)),
		)
		degraded := make([]Comparison, len(existing))
		for i := range existing {
			degraded[i] = noneComparison(existing[i])
		}
		return degraded, nil
	}
	return out, nil
}

// run invokes the parser with one task and decodes its stdout JSON into out.
func (c *Client) run(out any, task string, args ...string) error {
	argv := append([]string{"-t", task}, args...)
	cmd := exec.Command(c.exe, argv...)
	raw, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return fmt.Errorf("address parser %s: %w: %s", task, err, ee.Stderr)
		}
		return fmt.Errorf("address parser %s: %w", task, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("address parser %s: decoding response: %w", task, err)
	}
	return nil
}

// stage writes the address list to a uniquely named JSON file for a bulk
// task. The returned cleanup removes it.
func (c *Client) stage(addrs []*string) (string, func(), error) {
	if err := os.MkdirAll(c.dataDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating parser data dir: %w", err)
	}
	path := filepath.Join(c.dataDir, "bulk-"+uuid.NewString()+".json")
	data, err := json.Marshal(addrs)
	if err != nil {
		return "", nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", nil, fmt.Errorf("staging parser input: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

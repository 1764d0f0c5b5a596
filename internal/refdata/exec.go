package refdata

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Runner executes an external command and returns its stdout and stderr.
type Runner func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

// CommandRunner runs commands with os/exec.
func CommandRunner(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Credential is one login attempt for the containerized client. When
// PasswordEnv is set the password is read from that variable inside the
// container.
type Credential struct {
	User        string
	Password    string
	PasswordEnv string
}

// ExecOptions configures ExecSource.
type ExecOptions struct {
	Runtime     string   // container runtime binary, e.g. "docker"
	Containers  []string // container names to try, in order
	Image       string   // image used to discover a container when no name matches
	Client      string   // database client inside the container, e.g. "mysql"
	Database    string
	Credentials []Credential
	Run         Runner
}

// ExecSource reaches the database by executing its command-line client
// inside a running container and parsing the tab-separated output.
type ExecSource struct {
	opts      ExecOptions
	container string
	cred      int
}

// OpenExec finds a running container and probes it with each credential
// until one answers.
func OpenExec(ctx context.Context, opts ExecOptions) (*ExecSource, error) {
	if opts.Run == nil {
		opts.Run = CommandRunner
	}
	if opts.Runtime == "" {
		opts.Runtime = "docker"
	}
	if opts.Client == "" {
		opts.Client = "mysql"
	}
	if len(opts.Credentials) == 0 {
		return nil, eris.New("refdata: exec: no credentials configured")
	}

	s := &ExecSource{opts: opts}
	container, err := s.findContainer(ctx)
	if err != nil {
		return nil, err
	}
	s.container = container

	for i := range opts.Credentials {
		s.cred = i
		_, err := s.run(ctx, "SELECT 1")
		if err == nil {
			return s, nil
		}
		zap.L().Debug("refdata: exec credential rejected",
			zap.String("container", container),
			zap.String("user", opts.Credentials[i].User),
			zap.Error(err),
		)
	}
	return nil, eris.Errorf("refdata: exec: no credential accepted by container %s", container)
}

func (s *ExecSource) findContainer(ctx context.Context) (string, error) {
	for _, name := range s.opts.Containers {
		names, err := s.ps(ctx, "name="+name)
		if err != nil {
			return "", err
		}
		for _, n := range names {
			if n == name {
				return n, nil
			}
		}
	}
	if s.opts.Image != "" {
		names, err := s.ps(ctx, "ancestor="+s.opts.Image)
		if err != nil {
			return "", err
		}
		if len(names) > 0 {
			return names[0], nil
		}
	}
	return "", eris.Errorf("refdata: exec: no running container among %v (image %q)", s.opts.Containers, s.opts.Image)
}

func (s *ExecSource) ps(ctx context.Context, filter string) ([]string, error) {
	out, stderr, err := s.opts.Run(ctx, s.opts.Runtime, "ps", "--filter", filter, "--format", "{{.Names}}")
	if err != nil {
		return nil, eris.Wrapf(err, "refdata: exec: %s ps: %s", s.opts.Runtime, strings.TrimSpace(string(stderr)))
	}
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

func (s *ExecSource) password(ctx context.Context, c Credential) string {
	if c.PasswordEnv == "" {
		return c.Password
	}
	out, _, err := s.opts.Run(ctx, s.opts.Runtime, "exec", s.container, "printenv", c.PasswordEnv)
	if err != nil || strings.TrimSpace(string(out)) == "" {
		return c.Password
	}
	return strings.TrimSpace(string(out))
}

func (s *ExecSource) run(ctx context.Context, query string) (string, error) {
	c := s.opts.Credentials[s.cred]
	args := []string{"exec", "-i", s.container, s.opts.Client, "-u", c.User}
	if pw := s.password(ctx, c); pw != "" {
		args = append(args, "-p"+pw)
	}
	args = append(args, "-B", s.opts.Database, "-e", query)

	out, stderr, err := s.opts.Run(ctx, s.opts.Runtime, args...)
	if err != nil {
		return "", eris.Wrapf(err, "refdata: exec query: %s", strings.TrimSpace(string(stderr)))
	}
	return string(out), nil
}

// Name implements Source.
func (s *ExecSource) Name() string {
	return s.opts.Runtime + ":" + s.container
}

// Query implements Source. A failure with the active credential retries
// once with each remaining credential.
func (s *ExecSource) Query(ctx context.Context, query string, columns []string) ([][]string, error) {
	out, err := s.run(ctx, query)
	for err != nil && s.cred+1 < len(s.opts.Credentials) {
		s.cred++
		zap.L().Warn("refdata: exec query failed, trying next credential",
			zap.String("user", s.opts.Credentials[s.cred].User),
		)
		out, err = s.run(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	return ParseTSV(out, columns), nil
}

// Close implements Source.
func (s *ExecSource) Close() error { return nil }

// ParseTSV parses the batch output of a command-line SQL client. It drops
// blank lines and client warnings, skips a header line when the first line
// repeats the column names, maps the literal NULL to "", pads short rows
// and drops rows whose first field is empty.
func ParseTSV(out string, columns []string) [][]string {
	var rows [][]string
	first := true
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || isWarning(line) {
			continue
		}

		fields := strings.Split(line, "\t")
		for i, f := range fields {
			f = strings.TrimSpace(f)
			if f == "NULL" {
				f = ""
			}
			fields[i] = f
		}

		if first {
			first = false
			if isHeader(fields, columns) {
				continue
			}
		}
		if fields[0] == "" {
			continue
		}
		rows = append(rows, fitRow(fields, len(columns)))
	}
	return rows
}

func isWarning(line string) bool {
	l := strings.ToLower(strings.TrimSpace(line))
	return strings.HasPrefix(l, "warning") ||
		strings.HasPrefix(l, "mysql: [warning]") ||
		strings.HasPrefix(l, "[warning]")
}

func isHeader(fields, columns []string) bool {
	if len(columns) == 0 || len(fields) < len(columns) {
		return false
	}
	for i, c := range columns {
		if !strings.EqualFold(fields[i], c) {
			return false
		}
	}
	return true
}

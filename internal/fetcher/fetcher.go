// Package fetcher retrieves MedGen's source files from its public, anonymous
// FTP release directory: listing, checksum-manifest discovery, release
// version detection, and resumable, checksum-verified downloads.
package fetcher

import (
	"bufio"
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/sirupsen/logrus"
)

const (
	defaultHost = "ftp.ncbi.nlm.nih.gov:21"
	defaultPath = "/pub/medgen"

	maxAttempts      = 5
	initialRetryWait = 2 * time.Second
	maxRetryWait     = 60 * time.Second
)

// candidateChecksumNames are tried, in order, when the caller hasn't pinned a
// checksum manifest filename; the first one present on the server wins.
var candidateChecksumNames = []string{"md5sum.txt", "MD5SUMS", "CHECKSUMS"}

var releaseVersionPattern = regexp.MustCompile(`(?i)(?:Last update|Release Date|Version):\s*(.*)`)

// Client is a connected session against the MedGen FTP release directory.
type Client struct {
	conn   *ftp.ServerConn
	host   string
	path   string
	logger *logrus.Logger
}

// Config selects the remote host and directory, overridable independently of
// defaults via MEDGEN_FTP_HOST / MEDGEN_FTP_PATH at the call site.
type Config struct {
	Host   string
	Path   string
	Logger *logrus.Logger
}

// Connect dials the FTP server, logs in anonymously, and changes into the
// configured release directory.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	host := cfg.Host
	if host == "" {
		host = defaultHost
	}
	path := cfg.Path
	if path == "" {
		path = defaultPath
	}

	conn, err := ftp.Dial(host, ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", host, err)
	}
	if err := conn.Login("anonymous", "anonymous"); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("anonymous login to %s: %w", host, err)
	}
	if err := conn.ChangeDir(path); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("changing to %s: %w", path, err)
	}
	return &Client{conn: conn, host: host, path: path, logger: cfg.Logger}, nil
}

// Close terminates the FTP session.
func (c *Client) Close() error {
	return c.conn.Quit()
}

func (c *Client) warnf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warnf(format, args...)
	}
}

// List returns the names of every file in the release directory.
func (c *Client) List(ctx context.Context) ([]string, error) {
	return c.conn.NameList("")
}

// FetchChecksums finds a checksum manifest under one of the well-known
// names, downloads it, and parses each "<md5>  <filename>" line into a map
// keyed by filename (any leading "./" stripped). Returns an error matching
// ErrChecksumsUnavailable if no candidate manifest exists on the server, or
// if the manifest cannot be retrieved, read, or yields no entries.
func (c *Client) FetchChecksums(ctx context.Context, files []string) (map[string]string, error) {
	name := pickChecksumFile(files)
	if name == "" {
		return nil, ErrChecksumsUnavailable
	}

	r, err := c.conn.Retr(name)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieving %s: %w", ErrChecksumsUnavailable, name, err)
	}
	defer r.Close()

	checksums, err := parseChecksums(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrChecksumsUnavailable, name, err)
	}
	if len(checksums) == 0 {
		return nil, ErrChecksumsUnavailable
	}
	return checksums, nil
}

// parseChecksums parses "<md5>  <filename>" lines (any leading "./" on the
// filename stripped) into a filename-keyed map.
func parseChecksums(r io.Reader) (map[string]string, error) {
	checksums := make(map[string]string)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		sum := fields[0]
		file := strings.TrimPrefix(fields[len(fields)-1], "./")
		checksums[file] = sum
	}
	return checksums, sc.Err()
}

func pickChecksumFile(files []string) string {
	have := make(map[string]bool, len(files))
	for _, f := range files {
		have[f] = true
	}
	for _, candidate := range candidateChecksumNames {
		if have[candidate] {
			return candidate
		}
	}
	for _, f := range files {
		if strings.Contains(strings.ToLower(f), "md5") {
			return f
		}
	}
	return ""
}

// FetchReleaseVersion scans the release notes file for a "Last update",
// "Release Date", or "Version" marker. It never fails the run: any error or
// absence of a marker yields "Unknown".
func (c *Client) FetchReleaseVersion(ctx context.Context, releaseNotesFile string) string {
	if releaseNotesFile == "" {
		return "Unknown"
	}
	r, err := c.conn.Retr(releaseNotesFile)
	if err != nil {
		c.warnf("could not read %s to determine release version: %v", releaseNotesFile, err)
		return "Unknown"
	}
	defer r.Close()
	return scanReleaseVersion(r)
}

func scanReleaseVersion(r io.Reader) string {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if m := releaseVersionPattern.FindStringSubmatch(sc.Text()); m != nil {
			if v := strings.TrimSpace(m[1]); v != "" {
				return v
			}
		}
	}
	return "Unknown"
}

// Download fetches remoteName into localDir, resuming a partial local file
// by its byte size, retrying transient FTP failures with exponential
// backoff, and verifying the result's MD5 digest against checksums. A
// checksum mismatch deletes the partial local file and returns
// ChecksumMismatchError. A remoteName absent from checksums returns
// ChecksumMissingError without touching the network, unless skipVerify is set.
func (c *Client) Download(ctx context.Context, remoteName, localDir string, checksums map[string]string, skipVerify bool) (string, error) {
	expected, known := checksums[remoteName]
	if !skipVerify && !known {
		return "", &ChecksumMissingError{File: remoteName}
	}

	localPath := filepath.Join(localDir, remoteName)

	var lastErr error
	wait := initialRetryWait
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		if err := c.downloadAttempt(ctx, remoteName, localPath); err != nil {
			lastErr = err
			c.warnf("download attempt %d/%d for %s failed: %v", attempt, maxAttempts, remoteName, err)
			if attempt == maxAttempts {
				break
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return "", ctx.Err()
			}
			wait *= 2
			if wait > maxRetryWait {
				wait = maxRetryWait
			}
			continue
		}
		lastErr = nil
		break
	}
	if lastErr != nil {
		return "", fmt.Errorf("downloading %s after %d attempts: %w", remoteName, maxAttempts, lastErr)
	}

	if skipVerify {
		return localPath, nil
	}

	actual, err := md5sum(localPath)
	if err != nil {
		return "", fmt.Errorf("hashing %s: %w", localPath, err)
	}
	if !strings.EqualFold(actual, expected) {
		_ = os.Remove(localPath)
		return "", &ChecksumMismatchError{File: remoteName, Expected: expected, Actual: actual}
	}
	return localPath, nil
}

func (c *Client) downloadAttempt(ctx context.Context, remoteName, localPath string) error {
	var offset uint64
	if fi, err := os.Stat(localPath); err == nil {
		offset = uint64(fi.Size())
	}

	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(localPath, flags, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", localPath, err)
	}
	defer f.Close()

	var r io.ReadCloser
	if offset > 0 {
		r, err = c.conn.RetrFrom(remoteName, offset)
	} else {
		r, err = c.conn.Retr(remoteName)
	}
	if err != nil {
		return fmt.Errorf("RETR %s: %w", remoteName, err)
	}
	defer r.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("writing %s: %w", localPath, err)
	}
	return nil
}

func md5sum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

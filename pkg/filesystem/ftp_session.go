package filesystem

import (
	"context"
	"fmt"
	"io"

	"github.com/jlaffaye/ftp"
)

// Credentials used when an FTP URL carries no user.
const (
	anonymousUser     = "anonymous"
	anonymousPassword = "anonymous"
)

// FTPSession holds an active FTP control connection for one poll cycle.
type FTPSession struct {
	conn *ftp.ServerConn
}

// ConnectFTP dials the server and logs in. Without a user in the target it
// logs in anonymously.
func ConnectFTP(ctx context.Context, target *Target) (*FTPSession, error) {
	conn, err := ftp.Dial(
		target.Address(),
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(DefaultDialTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("FTP connection failed: %w", err)
	}

	user, password := target.User, target.Password
	if user == "" {
		user, password = anonymousUser, anonymousPassword
	}

	if err := conn.Login(user, password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("FTP login as %s failed: %w", user, err)
	}

	return &FTPSession{conn: conn}, nil
}

// Close ends the FTP session.
func (s *FTPSession) Close() error {
	if s.conn == nil {
		return nil
	}

	if err := s.conn.Quit(); err != nil {
		return fmt.Errorf("FTP quit failed: %w", err)
	}

	return nil
}

// Fetch retrieves a remote file.
func (s *FTPSession) Fetch(ctx context.Context, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := s.conn.Retr(file)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve remote file %s: %w", file, err)
	}

	data, readErr := io.ReadAll(resp)

	// Close reads the transfer-complete reply; skipping it desyncs the control connection
	closeErr := resp.Close()

	if readErr != nil {
		return nil, fmt.Errorf("failed to read remote file %s: %w", file, readErr)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to finish transfer of %s: %w", file, closeErr)
	}

	return data, nil
}

// List reads one remote directory. MLSD is used when the server supports it,
// falling back to LIST.
func (s *FTPSession) List(ctx context.Context, dir string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ftpEntries, err := s.conn.List(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list remote directory %s: %w", dir, err)
	}

	entries := make([]Entry, 0, len(ftpEntries))
	for _, fe := range ftpEntries {
		if fe.Name == "." || fe.Name == ".." {
			continue
		}

		entries = append(entries, Entry{
			Name:    fe.Name,
			IsDir:   fe.Type == ftp.EntryTypeFolder,
			Size:    int64(fe.Size), //nolint:gosec // File sizes fit in int64
			ModTime: fe.Time,
		})
	}

	return entries, nil
}

package git

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gitsight/go-vcsurl"
	"github.com/go-git/go-git/v5"
)

// RepositoryMetadata describes the repository enclosing a scan target.
type RepositoryMetadata struct {
	BranchName         *string `json:"branch,omitempty"`
	CommitHash         *string `json:"commit,omitempty"`
	RepositoryFullName *string `json:"repository,omitempty"`
	Host               *string `json:"host,omitempty"`
	RemoteURL          *string `json:"remote_url,omitempty"`
	Subfolder          string  `json:"subfolder,omitempty"`
	RepoRootFolder     string  `json:"root_folder"`
}

// CollectRepositoryMetadata collects branch name, commit hash, origin remote
// and the position of sourceFolder inside its repository. The partially
// filled metadata is returned together with any error.
func CollectRepositoryMetadata(sourceFolder string) (*RepositoryMetadata, error) {
	if sourceFolder == "" {
		return &RepositoryMetadata{}, ErrSourceNotSet
	}

	if absSource, err := filepath.Abs(sourceFolder); err == nil {
		sourceFolder = absSource
	}

	md := &RepositoryMetadata{
		RepoRootFolder: filepath.Clean(sourceFolder),
	}

	repoRootFolder, err := findGitRepositoryPath(sourceFolder)
	if err != nil {
		return md, err
	}

	md.RepoRootFolder = filepath.Clean(repoRootFolder)

	repo, err := git.PlainOpen(repoRootFolder)
	if err != nil {
		return md, fmt.Errorf("failed to open repository: %w", err)
	}

	if rel, err := filepath.Rel(repoRootFolder, sourceFolder); err == nil && rel != "." {
		md.Subfolder = filepath.ToSlash(rel)
	}

	if head, err := repo.Head(); err == nil {
		if head.Name().IsBranch() {
			branchName := head.Name().Short()
			md.BranchName = &branchName
		}

		hash := head.Hash().String()
		md.CommitHash = &hash
	}

	if remote, err := repo.Remote("origin"); err == nil {
		if cfg := remote.Config(); cfg != nil && len(cfg.URLs) > 0 {
			applyRemote(md, cfg.URLs[0])
		}
	}

	return md, nil
}

// applyRemote records the origin URL. Hosted remotes are reduced to
// owner/name; anything vcsurl cannot parse is kept without the .git suffix.
func applyRemote(md *RepositoryMetadata, rawURL string) {
	remoteURL := rawURL
	md.RemoteURL = &remoteURL

	info, err := vcsurl.Parse(rawURL)
	if err != nil || info.FullName == "" {
		fullName := strings.TrimSuffix(rawURL, ".git")
		md.RepositoryFullName = &fullName
		return
	}

	fullName := info.FullName
	host := string(info.Host)
	md.RepositoryFullName = &fullName
	md.Host = &host
}

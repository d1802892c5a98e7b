package git

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"codnect.io/chrono"
	"github.com/GlintPay/agentstack/backend"
	"github.com/GlintPay/agentstack/config"
	gotel "github.com/GlintPay/agentstack/otel"
	goGit "github.com/go-git/go-git/v5"
	goGitConfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"github.com/rs/zerolog/log"
)

func (s *Backend) Init(ctxt context.Context, config config.ApplicationConfiguration) error {
	s.Config = config.Git

	if s.Config.PrivateKey != "" {
		hostKeyCallback, err := ssh.NewKnownHostsCallback(s.Config.KnownHostsFile)
		if err != nil {
			return err
		}

		s.PublicKeys, err = ssh.NewPublicKeys("git", []byte(strings.TrimSpace(s.Config.PrivateKey)), "")
		if err != nil {
			return err
		}

		s.PublicKeys.HostKeyCallback = hostKeyCallback
	}

	if s.Config.CloneOnStart {
		log.Debug().Msg("Clone on startup...")

		if e := s.connect(ctxt, !s.Config.DisableBaseDirCleaning); e != nil {
			return e
		}
	}

	if s.Config.RefreshRateMillis > 0 {
		scheduler := chrono.NewDefaultTaskScheduler()

		period := time.Duration(s.Config.RefreshRateMillis) * time.Millisecond
		log.Info().Msgf("Scheduling pull every %v", period)

		task, err := scheduler.ScheduleAtFixedRate(func(ctx context.Context) {
			if e := s.connect(ctx, false); e != nil {
				log.Error().Err(e).Msgf("Connect failed")
			}
		}, period)

		if err != nil {
			return err
		}
		s.refreshTask = task
	}

	return nil
}

func (s *Backend) branch() string {
	if s.Config.DefaultBranchName == "" {
		return DefaultBranchName
	}
	return s.Config.DefaultBranchName
}

func (s *Backend) stackFile() string {
	if s.Config.StackFile == "" {
		return DefaultStackFile
	}
	return s.Config.StackFile
}

func (s *Backend) connect(ctxt context.Context, cleanExisting bool) error {
	if cleanExisting {
		if e := s.cleanRepo(); e != nil {
			return e
		}
	}

	repo, err := goGit.PlainOpen(s.Config.Basedir)

	branch := s.branch()
	ref := plumbing.NewBranchReferenceName(branch)

	if errors.Is(err, goGit.ErrRepositoryNotExists) {
		if s.EnableTrace {
			_, span := gotel.GetTracer(ctxt).Start(ctxt, "git-clone", gotel.ClientOptions)
			defer span.End()
		}

		// only HEAD of one branch is ever read
		cloneOpts := s.getCloneOptions(ref, 1)
		repo, err = goGit.PlainCloneContext(ctxt, s.Config.Basedir, false, cloneOpts)
		if err != nil {
			return err
		}

		log.Debug().Msgf("Cloned [%s] OK", branch)
	} else if err != nil {
		return err
	} else {
		w, err := repo.Worktree()
		if err != nil {
			return err
		}

		head, err := repo.Head()
		if err == nil && head.Name() != ref {
			if err = s.checkout(repo, w, branch, ref); err != nil {
				return err
			}
		}

		if s.EnableTrace {
			_, span := gotel.GetTracer(ctxt).Start(ctxt, "git-pull", gotel.ClientOptions)
			defer span.End()
		}

		err = w.PullContext(ctxt, s.getPullOptions(ref))
		if err != nil && !errors.Is(err, goGit.NoErrAlreadyUpToDate) {
			return err
		}

		if s.Config.ForcePull {
			log.Debug().Msgf("Pulled OK (with force)")
		} else {
			log.Debug().Msgf("Pulled OK")
		}
	}

	s.commitsLock.Lock()
	s.Repo = repo
	s.commitsLock.Unlock()

	return nil
}

func (s *Backend) getCloneOptions(ref plumbing.ReferenceName, depth int) *goGit.CloneOptions {
	cloneOpts := &goGit.CloneOptions{
		ReferenceName: ref,
		SingleBranch:  true,
		Depth:         depth,
		URL:           s.Config.Uri,
	}

	if s.PublicKeys != nil {
		cloneOpts.Auth = s.PublicKeys
	}
	if s.Config.ShowProgress {
		cloneOpts.Progress = os.Stdout
	}

	return cloneOpts
}

func (s *Backend) getPullOptions(ref plumbing.ReferenceName) *goGit.PullOptions {
	po := &goGit.PullOptions{
		ReferenceName: ref,
		SingleBranch:  true,
	}

	if s.PublicKeys != nil {
		po.Auth = s.PublicKeys
	}
	if s.Config.ShowProgress {
		po.Progress = os.Stdout
	}
	if s.Config.ForcePull {
		po.Force = true
	}

	return po
}

func (s *Backend) checkout(repo *goGit.Repository, w *goGit.Worktree, branch string, ref plumbing.ReferenceName) error {
	coOpts := &goGit.CheckoutOptions{Branch: ref}

	err := w.Checkout(coOpts)
	if err == nil {
		log.Debug().Msgf("Checked out local [%s] OK", branch)
		return nil
	}

	mirrorRemoteBranchRefSpec := fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch)
	if err = s.fetchOrigin(repo, mirrorRemoteBranchRefSpec); err != nil {
		return err
	}

	if err = w.Checkout(coOpts); err != nil {
		return err
	}

	log.Debug().Msgf("Checked out remote [%s] OK", branch)
	return nil
}

func (s *Backend) fetchOrigin(repo *goGit.Repository, refSpecStr string) error {
	remote, err := repo.Remote("origin")
	if err != nil {
		return err
	}

	fo := &goGit.FetchOptions{
		RefSpecs: []goGitConfig.RefSpec{goGitConfig.RefSpec(refSpecStr)},
	}

	if s.Config.ShowProgress {
		fo.Progress = os.Stdout
	}
	if s.PublicKeys != nil {
		fo.Auth = s.PublicKeys
	}

	if err = remote.Fetch(fo); err != nil {
		if errors.Is(err, goGit.NoErrAlreadyUpToDate) {
			log.Debug().Msgf("refs already up to date")
		} else {
			return fmt.Errorf("fetch origin failed: %w", err)
		}
	}

	return nil
}

func (s *Backend) cleanRepo() error {
	if s.Config.Basedir == "" {
		return nil
	}
	log.Debug().Msg("Cleaning existing...")
	return os.RemoveAll(s.Config.Basedir)
}

// Load returns the stack file as committed at HEAD. The repository is cloned on first use
// when `clone-on-start` is off.
func (s *Backend) Load(ctxt context.Context, refresh bool) (*backend.Document, error) {
	s.commitsLock.Lock()
	connected := s.Repo != nil
	s.commitsLock.Unlock()

	if refresh || !connected {
		if e := s.connect(ctxt, false); e != nil {
			return nil, e
		}
	}

	// Prevent `concurrent map writes` at `github.com/go-git/go-git/v5/plumbing/format/idxfile.(*MemoryIndex).genOffsetHash(0xc000262000)`
	s.commitsLock.Lock()
	defer s.commitsLock.Unlock()

	ref, err := s.Repo.Head()
	if err != nil {
		return nil, err
	}

	commit, err := s.Repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, err
	}

	name := s.stackFile()
	f, err := commit.File(name)
	if err != nil {
		return nil, fmt.Errorf("stack file [%s] at %s: %w", name, commit.Hash, err)
	}

	contents, err := f.Contents()
	if err != nil {
		return nil, err
	}

	return &backend.Document{
		Name:    s.Config.Uri + "/" + name,
		Version: commit.Hash.String(),
		Data:    []byte(contents),
	}, nil
}

func (s *Backend) Close() {
	if s.refreshTask != nil {
		s.refreshTask.Cancel()
	}
}

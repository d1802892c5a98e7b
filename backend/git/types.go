package git

import (
	"sync"

	"codnect.io/chrono"
	"github.com/GlintPay/agentstack/config"
	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

const (
	DefaultBranchName = "master"
	DefaultStackFile  = "Pulumi.yaml"
)

type Backend struct {
	Config      config.GitConfig
	Repo        *goGit.Repository
	PublicKeys  *ssh.PublicKeys
	EnableTrace bool

	commitsLock sync.Mutex
	refreshTask chrono.ScheduledTask
}

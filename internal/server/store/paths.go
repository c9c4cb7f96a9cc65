package store

import (
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/trustkeeper/internal/filex"
)

const storeDirName = "securityStore"

// Paths is the resolved on-disk layout of one domain and environment.
type Paths struct {
	Root       string
	Store      string
	UserStore  string
	PrivateKey string
	PublicKey  string

	Service         string
	ServiceChecksum string
	Device          string
	User            string
	UserPass        string
}

// ResolvePaths finds the scaffold root above startDir and lays out the
// domain-scoped and cross-domain store directories beneath it. An empty
// startDir means the directory of the running executable.
func ResolvePaths(startDir, scaffoldDir, domain, env string) (Paths, error) {
	if startDir == "" {
		exe, err := os.Executable()
		if err != nil {
			return Paths{}, err
		}
		startDir = filepath.Dir(exe)
	}

	root, err := filex.FindAncestor(startDir, scaffoldDir)
	if err != nil {
		return Paths{}, err
	}

	store := filepath.Join(root, storeDirName, domain, env)
	userStore := filepath.Join(root, storeDirName, "user", env)

	return Paths{
		Root:       root,
		Store:      store,
		UserStore:  userStore,
		PrivateKey: filepath.Join(store, domain+"_private.key"),
		PublicKey:  filepath.Join(store, domain+"_public.key"),

		Service:         filepath.Join(store, "service", "service.json"),
		ServiceChecksum: filepath.Join(store, "service", "serviceChecksum.json"),
		Device:          filepath.Join(store, "device", "device.json"),
		User:            filepath.Join(userStore, "users.json"),
		UserPass:        filepath.Join(userStore, "usersPass.json"),
	}, nil
}

// dirs lists every directory the layout needs.
func (p Paths) dirs() []string {
	return []string{
		p.Store,
		filepath.Dir(p.Service),
		filepath.Dir(p.Device),
		p.UserStore,
	}
}

// tables maps every table name to its file.
func (p Paths) tables() map[string]string {
	return map[string]string{
		TableService:         p.Service,
		TableServiceChecksum: p.ServiceChecksum,
		TableDevice:          p.Device,
		TableUser:            p.User,
		TableUserPass:        p.UserPass,
	}
}

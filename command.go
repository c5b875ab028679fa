package mongotest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultImage is used when [New] is called with an empty image.
	DefaultImage = "mongo:4.0.1"
	// Port is the port mongod listens on inside the container.
	Port = 27017
	// ReplicaSetName is the name of the single-node replica set.
	ReplicaSetName = "rs0"

	containerPort = "27017/tcp"
	keyfilePath   = "/tmp/mongo-keyfile"
	authDatabase  = "admin"

	startupTimeout      = 120 * time.Second
	primaryPollAttempts = 60
	primaryPollInterval = 100 * time.Millisecond

	// Images from this major version on ship mongosh instead of the legacy mongo shell.
	modernShellMajorVersion = 5
	modernShell             = "mongosh"
	legacyShell             = "mongo"
)

var waitingForConnections = regexp.MustCompile(`(?i)waiting for connections`)

// initiateScript turns the standalone node into a one-member replica set.
const initiateScript = "rs.initiate();"

// waitPrimaryScript polls until the node reports itself primary and exits 1 after
// primaryPollAttempts failed checks.
var waitPrimaryScript = fmt.Sprintf(`
var attempt = 0;
while (db.runCommand({isMaster: 1}).ismaster == false) {
  attempt++;
  if (attempt >= %d) {
    quit(1);
  }
  print(attempt); sleep(%d);
}
`, primaryPollAttempts, primaryPollInterval.Milliseconds())

type credentials struct {
	username string
	password string
}

// startupCommand returns the container command. With credentials the server needs a keyfile,
// which is generated at boot before exec'ing mongod.
func startupCommand(creds *credentials) []string {
	if creds == nil {
		return []string{"--replSet", ReplicaSetName}
	}
	script := fmt.Sprintf(
		"openssl rand -base64 756 > %[1]s && "+
			"chmod 600 %[1]s && "+
			"chown mongodb:mongodb %[1]s && "+
			"exec mongod --replSet %[2]s --keyFile %[1]s --bind_ip_all",
		keyfilePath, ReplicaSetName,
	)
	return []string{"/bin/sh", "-c", script}
}

// startupEnv returns the environment that makes the image entrypoint create the root user on
// first boot.
func startupEnv(creds *credentials) map[string]string {
	if creds == nil {
		return nil
	}
	return map[string]string{
		"MONGO_INITDB_ROOT_USERNAME": creds.username,
		"MONGO_INITDB_ROOT_PASSWORD": creds.password,
	}
}

func evalCommand(shell string, creds *credentials, script string) []string {
	cmd := []string{shell}
	if creds != nil {
		cmd = append(cmd,
			"--username", creds.username,
			"--password", creds.password,
			"--authenticationDatabase", authDatabase,
		)
	}
	return append(cmd, "--eval", script)
}

// shellForImage picks the mongo shell binary from the major version of the image tag. Tags
// without a numeric prefix, such as "latest", point at current releases and get mongosh.
func shellForImage(image string) string {
	major, ok := majorVersion(imageTag(image))
	if ok && major < modernShellMajorVersion {
		return legacyShell
	}
	return modernShell
}

func imageTag(image string) string {
	if i := strings.IndexByte(image, '@'); i >= 0 {
		image = image[:i]
	}
	// A colon before the last slash belongs to a registry host:port, not the tag.
	colon := strings.LastIndexByte(image, ':')
	if colon > strings.LastIndexByte(image, '/') {
		return image[colon+1:]
	}
	return "latest"
}

func majorVersion(tag string) (int, bool) {
	end := strings.IndexFunc(tag, func(r rune) bool { return r < '0' || r > '9' })
	if end == -1 {
		end = len(tag)
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(tag[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

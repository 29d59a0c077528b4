package handlers

import (
	"context"
	"errors"
	"net/http"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stellark/stellark-go/models"
	"github.com/stellark/stellark-go/session"
	"github.com/stellark/stellark-go/soroban"
)

const deployTimeout = 3 * time.Minute

var (
	errMissingDeployCommand = errors.New("DEPLOY_COMMAND is empty")
	errNoContractID         = errors.New("no contract id in output")
)

// SystemHandler serves the health probe, static deployment info, and the
// contract-deploy passthrough to the external CLI.
type SystemHandler struct {
	client        *soroban.Client
	network       models.NetworkConfig
	deployCommand string
	operator      *session.Session
	log           zerolog.Logger
}

func NewSystemHandler(client *soroban.Client, network models.NetworkConfig, deployCommand string, operator *session.Session, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		client:        client,
		network:       network,
		deployCommand: deployCommand,
		operator:      operator,
		log:           log.With().Str("component", "system").Logger(),
	}
}

// fail logs the failure before surfacing it in the response.
func (h *SystemHandler) fail(w http.ResponseWriter, message string, err error) {
	h.log.Error().Err(err).Msg(message)
	writeError(w, message, err)
}

func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.client.Health(r.Context()); err != nil {
		h.fail(w, "rpc node unreachable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *SystemHandler) DeploymentInfo(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{"network": h.network}
	if h.operator != nil {
		info["operator"] = map[string]any{
			"address":        h.operator.Address(),
			"native_balance": h.operator.NativeBalance(),
		}
	}
	writeJSON(w, http.StatusOK, info)
}

// DeployContract shells out to the external deploy CLI and reports the
// contract id it printed. The CLI itself is an external collaborator.
func (h *SystemHandler) DeployContract(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), deployTimeout)
	defer cancel()

	parts := strings.Fields(h.deployCommand)
	if len(parts) == 0 {
		h.fail(w, "deploy command not configured", errMissingDeployCommand)
		return
	}

	h.log.Info().Str("command", h.deployCommand).Msg("running contract deployment")
	output, err := exec.CommandContext(ctx, parts[0], parts[1:]...).CombinedOutput()
	if err != nil {
		h.fail(w, "contract deployment failed: "+strings.TrimSpace(string(output)), err)
		return
	}

	contractID := parseContractID(string(output))
	if contractID == "" {
		h.fail(w, "deploy output contained no contract id", errNoContractID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"contractId": contractID,
	})
}

// parseContractID picks the last contract strkey the CLI printed.
func parseContractID(output string) string {
	contractID := ""
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "C") && len(line) == 56 {
			contractID = line
		}
	}
	return contractID
}

package hooks

// Commands whose file arguments are worth scanning for images.
var wrappedCommands = []string{"cp", "mv", "scp"}

// HookScript returns the full hook script for the manager's shell.
func (m *Manager) HookScript() string {
	if m.shell == "fish" {
		return fishScript
	}
	script := posixFunctions
	switch m.shell {
	case "zsh":
		script += zshRegistration
	default:
		script += bashRegistration
	}
	return script
}

const posixFunctions = `# KlipDot hook functions

klipdot_handle_file() {
    local file_path="$1"
    local source="${2:-terminal}"

    if [[ -f "$file_path" ]]; then
        case "$file_path" in
            *.png|*.jpg|*.jpeg|*.gif|*.bmp|*.webp|*.svg|*.tif|*.tiff|*.ico)
                if command -v klipdot >/dev/null 2>&1; then
                    klipdot capture "$file_path" --source "$source" 2>/dev/null &
                fi
                ;;
        esac
    fi
}

klipdot_scan_args() {
    for arg in "$@"; do
        if [[ -f "$arg" ]]; then
            klipdot_handle_file "$arg" "command"
        fi
    done
}

klipdot_preexec_hook() {
    local cmd="$1"
    local cmd_array=($cmd)
    local base_cmd="${cmd_array[0]}"

    case "$base_cmd" in
        cp|mv|scp|rsync|wget|curl)
            klipdot_scan_args "${cmd_array[@]:1}"
            ;;
        screencapture|screenshot|scrot|gnome-screenshot|spectacle|flameshot)
            echo "[klipdot] screenshot command detected: $base_cmd"
            ;;
    esac
}

klipdot_precmd_hook() {
    :
}

cp() {
    command cp "$@"
    local result=$?
    klipdot_scan_args "$@"
    return $result
}

mv() {
    command mv "$@"
    local result=$?
    klipdot_scan_args "$@"
    return $result
}

scp() {
    command scp "$@"
    local result=$?
    klipdot_scan_args "$@"
    return $result
}
`

const zshRegistration = `
autoload -Uz add-zsh-hook
add-zsh-hook preexec klipdot_preexec_hook
add-zsh-hook precmd klipdot_precmd_hook
`

const bashRegistration = `
trap 'klipdot_preexec_hook "$BASH_COMMAND"' DEBUG
if [[ -z "$PROMPT_COMMAND" ]]; then
    PROMPT_COMMAND="klipdot_precmd_hook"
else
    PROMPT_COMMAND="klipdot_precmd_hook;$PROMPT_COMMAND"
fi
`

const fishScript = `# KlipDot hook functions

function klipdot_handle_file
    set file_path $argv[1]
    if test -f "$file_path"
        switch "$file_path"
            case '*.png' '*.jpg' '*.jpeg' '*.gif' '*.bmp' '*.webp' '*.svg' '*.tif' '*.tiff' '*.ico'
                if command -v klipdot >/dev/null 2>&1
                    klipdot capture "$file_path" --source command 2>/dev/null &
                end
        end
    end
end

function klipdot_scan_args
    for arg in $argv
        if test -f "$arg"
            klipdot_handle_file "$arg"
        end
    end
end

function klipdot_preexec_hook --on-event fish_preexec
    set cmd_array (string split ' ' $argv[1])
    switch $cmd_array[1]
        case cp mv scp rsync wget curl
            klipdot_scan_args $cmd_array[2..-1]
        case screencapture screenshot scrot gnome-screenshot spectacle flameshot
            echo "[klipdot] screenshot command detected: $cmd_array[1]"
    end
end
`

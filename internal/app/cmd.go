package app

import "fmt"

// Command はpostboardバイナリのサブコマンドを表す。
type Command string

const (
	// CommandServe はAPIサーバーを起動する。
	CommandServe Command = "serve"
	// CommandWorker は期限切れセッションのクリーンアップを定期実行する。
	CommandWorker Command = "worker"
	// CommandMigrate はスキーマのマイグレーションを適用またはロールバックする。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は/healthを叩いて終了コードで結果を返す。
	// distrolessイメージにはcurlがないためDockerのHEALTHCHECKから使う。
	CommandHealthcheck Command = "healthcheck"
)

var commands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandWorker):      CommandWorker,
	string(CommandMigrate):     CommandMigrate,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand は先頭の引数からサブコマンドを決める。
// 引数なし、または未知の名前はserveとして扱う。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd, ok := commands[args[0]]; ok {
		return cmd
	}
	return CommandServe
}

// MigrateDirection はmigrateサブコマンドの実行方向。
type MigrateDirection string

const (
	MigrateUp   MigrateDirection = "up"
	MigrateDown MigrateDirection = "down"
)

// ParseMigrateDirection は `migrate [up|down]` の方向を解析する。
// argsはサブコマンド名を含む引数列で、方向の省略時はupになる。
func ParseMigrateDirection(args []string) (MigrateDirection, error) {
	if len(args) < 2 {
		return MigrateUp, nil
	}
	switch dir := MigrateDirection(args[1]); dir {
	case MigrateUp, MigrateDown:
		return dir, nil
	default:
		return "", fmt.Errorf("unknown migrate direction %q (want up or down)", args[1])
	}
}

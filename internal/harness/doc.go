// Package harness は正しさ検証とベンチマークの統合実行機能を提供する。
//
// エンジンは1回のランとして、接続確立、正しさチェックスイート、
// 単一接続ベンチマーク、並行接続ベンチマークを順に実行し、
// 結果をRunReportにまとめる。
//
// # 機能
//
// - ラン定義と実行
// - 定義済みプリセット
// - 実行結果のレポート生成
//
// # プリセット
//
// - quick: 短時間の動作確認
// - standard: 標準ベンチマーク（単一5万、5クライアント×2万）
// - stress: 高負荷ストレステスト
//
// # 使用例
//
//	config := harness.StandardPreset()
//	config.Addr = "127.0.0.1:6379"
//	engine := harness.New(config)
//	report, err := engine.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Report())
package harness

// Package nl80211 speaks the Linux nl80211 generic netlink protocol for
// qosship: it resolves the family, joins notification groups, sends
// station statistics queries and decodes station information replies and
// notifications into qos.Sample values.
//
// Requests are fire-and-forget. Replies are not correlated with requests:
// any message carrying NL80211_ATTR_STA_INFO, whether a unicast reply or a
// multicast notification, feeds the same decode path.
package nl80211

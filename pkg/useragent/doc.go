// Package useragent classifies the clients that load tracking pixels and
// follow tracked links.
//
// Classification is keyword based and coarse: a device type
// (desktop, mobile, tablet, bot, unknown) and, for image fetches made by
// mail providers on the recipient's behalf, the proxy name. Opens reported
// through a proxy do not prove a human looked at the message.
//
//	c := useragent.Classify(r.UserAgent())
//	if c.MailProxy != "" {
//		// prefetched by the Gmail or Yahoo image proxy
//	}
package useragent
